package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rosterline/rosterline-backend/internal/api/middleware"
	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/service"
)

type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

type assignmentResponse struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"memberId"`
	Date      string    `json:"date"`
	EventName string    `json:"eventName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAssignmentResponse(a *repository.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:        a.ID,
		MemberID:  a.MemberID,
		Date:      a.Date,
		EventName: a.EventName,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}

func (h *AssignmentHandler) List(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}
	teamID := c.Param("id")
	from, to, ok := rangeParams(c)
	if !ok {
		return
	}

	assignments, err := h.assignmentService.List(c.Request.Context(), teamID, from, to)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	out := make([]assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, toAssignmentResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"assignments": out})
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")

	var req service.CreateAssignmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[Assignment Create] TeamID: %s, By: %s, For: %s, Date: %s", teamID, memberID, req.MemberID, req.Date)

	assignment, err := h.assignmentService.Create(c.Request.Context(), teamID, req)
	if err != nil {
		log.Printf("[Assignment Create] Failed - TeamID: %s, Error: %v", teamID, err)
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAssignmentResponse(assignment))
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}
	teamID := c.Param("id")
	assignmentID := c.Param("assignmentId")

	if err := h.assignmentService.Delete(c.Request.Context(), teamID, assignmentID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
