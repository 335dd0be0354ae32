package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterline/rosterline-backend/internal/api/middleware"
	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/service"
)

type ConflictHandler struct {
	conflictService service.ConflictService
}

func (h *ConflictHandler) List(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}
	teamID := c.Param("id")
	includeResolved := c.Query("includeResolved") == "true"

	rows, err := h.conflictService.List(c.Request.Context(), teamID, includeResolved)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	out := make([]conflictResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, storedConflictResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": out})
}

func (h *ConflictHandler) Pending(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}
	teamID := c.Param("id")

	conflicts, err := h.conflictService.Pending(c.Request.Context(), teamID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	out := make([]conflictResponse, 0, len(conflicts))
	for _, conflict := range conflicts {
		out = append(out, toConflictResponse(conflict))
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": out})
}

func (h *ConflictHandler) Resolve(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")
	conflictID := c.Param("conflictId")

	log.Printf("[Conflict Resolve] TeamID: %s, ConflictID: %s, By: %s", teamID, conflictID, memberID)

	resolved, err := h.conflictService.Resolve(c.Request.Context(), teamID, conflictID)
	if err != nil {
		log.Printf("[Conflict Resolve] Failed - ConflictID: %s, Error: %v", conflictID, err)
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConflictResponse(resolved))
}

func (h *ConflictHandler) Scan(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}
	teamID := c.Param("id")
	from, to, ok := rangeParams(c)
	if !ok {
		return
	}

	detected, err := h.conflictService.Scan(c.Request.Context(), teamID, from, to)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	out := make([]conflictResponse, 0, len(detected))
	for _, conflict := range detected {
		out = append(out, toConflictResponse(conflict))
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": out})
}

func storedConflictResponse(row *repository.Conflict) conflictResponse {
	return conflictResponse{
		ID:         row.ID,
		MemberID:   row.MemberID,
		EventID:    row.EventKey,
		Date:       row.ServiceDate,
		Role:       row.RoleName,
		Resolved:   row.Resolved,
		ResolvedAt: row.ResolvedAt,
		CreatedAt:  row.CreatedAt,
	}
}
