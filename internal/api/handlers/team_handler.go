package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterline/rosterline-backend/internal/api/middleware"
	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/service"
)

// TeamHandler handles team-related HTTP requests
type TeamHandler struct {
	teamService service.TeamService
}

type memberResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toMemberResponse(m *repository.Member) memberResponse {
	return memberResponse{ID: m.ID, Name: m.Name, Email: m.Email, Role: m.Role}
}

func (h *TeamHandler) Get(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")

	if err := h.teamService.RequireMembership(c.Request.Context(), teamID, memberID); err != nil {
		handleServiceError(c, err)
		return
	}

	team, members, err := h.teamService.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      team.ID,
		"name":    team.Name,
		"members": out,
	})
}
