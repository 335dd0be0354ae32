package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterline/rosterline-backend/internal/api/middleware"
	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/service"
)

type PatternHandler struct {
	patternService service.PatternService
}

type patternResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Weekday       int     `json:"weekday"`
	DefaultTime   *string `json:"defaultTime"`
	RehearsalRule *string `json:"rehearsalRule"`
}

func toPatternResponse(p *repository.EventPattern) patternResponse {
	return patternResponse{
		ID:            p.ID,
		Name:          p.Name,
		Weekday:       p.Weekday,
		DefaultTime:   p.DefaultTime,
		RehearsalRule: p.RehearsalRule,
	}
}

func (h *PatternHandler) List(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}
	teamID := c.Param("id")

	patterns, err := h.patternService.List(c.Request.Context(), teamID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	out := make([]patternResponse, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, toPatternResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"patterns": out})
}

// ReplaceRequest carries the full replacement catalog
type ReplacePatternsRequest struct {
	Patterns []service.PatternInput `json:"patterns" binding:"required"`
}

func (h *PatternHandler) Replace(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")

	var req ReplacePatternsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[Pattern Replace] TeamID: %s, MemberID: %s, Count: %d", teamID, memberID, len(req.Patterns))

	rows, err := h.patternService.Replace(c.Request.Context(), teamID, req.Patterns)
	if err != nil {
		log.Printf("[Pattern Replace] Failed - TeamID: %s, Error: %v", teamID, err)
		handleServiceError(c, err)
		return
	}

	out := make([]patternResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toPatternResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"patterns": out})
}
