package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterline/rosterline-backend/internal/api/middleware"
	"github.com/rosterline/rosterline-backend/internal/service"
)

// RosterHandler serves the resolved roster, per-date status, availability
// submission and sync triggers.
type RosterHandler struct {
	rosterService service.RosterService
	teamService   service.TeamService
}

func (h *RosterHandler) GetRoster(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")
	from, to, ok := rangeParams(c)
	if !ok {
		return
	}
	if err := h.teamService.RequireMembership(c.Request.Context(), teamID, memberID); err != nil {
		handleServiceError(c, err)
		return
	}

	byDate, warnings, err := h.rosterService.Roster(c.Request.Context(), teamID, from, to)
	if err != nil {
		log.Printf("[Roster Get] Failed - TeamID: %s, Error: %v", teamID, err)
		handleServiceError(c, err)
		return
	}

	days := make(map[string][]instanceResponse, len(byDate))
	for date, instances := range byDate {
		mapped := make([]instanceResponse, 0, len(instances))
		for _, inst := range instances {
			mapped = append(mapped, toInstanceResponse(inst))
		}
		days[date] = mapped
	}
	warns := make([]warningResponse, 0, len(warnings))
	for _, w := range warnings {
		warns = append(warns, warningResponse{Date: w.Date, Name: w.Name, PatternName: w.PatternName})
	}

	c.JSON(http.StatusOK, gin.H{"days": days, "warnings": warns})
}

func (h *RosterHandler) GetStatus(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")
	from, to, ok := rangeParams(c)
	if !ok {
		return
	}
	if err := h.teamService.RequireMembership(c.Request.Context(), teamID, memberID); err != nil {
		handleServiceError(c, err)
		return
	}

	statuses, err := h.rosterService.StatusRange(c.Request.Context(), teamID, memberID, from, to)
	if err != nil {
		log.Printf("[Roster Status] Failed - TeamID: %s, Error: %v", teamID, err)
		handleServiceError(c, err)
		return
	}

	out := make(map[string]statusResponse, len(statuses))
	for date, s := range statuses {
		out[date] = toStatusResponse(s)
	}
	c.JSON(http.StatusOK, gin.H{"statuses": out})
}

// SubmitAvailabilityRequest represents the request body for a response
type SubmitAvailabilityRequest struct {
	EventID string `json:"eventId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

func (h *RosterHandler) SubmitAvailability(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")

	var req SubmitAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.teamService.RequireMembership(c.Request.Context(), teamID, memberID); err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.rosterService.Submit(c.Request.Context(), teamID, memberID, req.EventID, req.Status); err != nil {
		log.Printf("[Availability Submit] Failed - TeamID: %s, MemberID: %s, Error: %v", teamID, memberID, err)
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "submitted"})
}

func (h *RosterHandler) TriggerSync(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")
	from, to, ok := rangeParams(c)
	if !ok {
		return
	}
	force := c.Query("force") == "true"
	if err := h.teamService.RequireMembership(c.Request.Context(), teamID, memberID); err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.rosterService.Sync(c.Request.Context(), teamID, from, to, force); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "synced"})
}
