package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rosterline/rosterline-backend/internal/roster"
	"github.com/rosterline/rosterline-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Team       *TeamHandler
	Roster     *RosterHandler
	Pattern    *PatternHandler
	Event      *EventHandler
	Assignment *AssignmentHandler
	Conflict   *ConflictHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Team:       &TeamHandler{teamService: services.Team},
		Roster:     &RosterHandler{rosterService: services.Roster, teamService: services.Team},
		Pattern:    &PatternHandler{patternService: services.Pattern},
		Event:      &EventHandler{eventService: services.Event},
		Assignment: &AssignmentHandler{assignmentService: services.Assignment},
		Conflict:   &ConflictHandler{conflictService: services.Conflict},
	}
}

func handleServiceError(c *gin.Context, err error) {
	switch err {
	case service.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case service.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case service.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case service.ErrInvalidToken:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	case service.ErrInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	case service.ErrInvalidDateRange:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// rangeParams reads the from/to query pair every window-scoped route takes.
func rangeParams(c *gin.Context) (string, string, bool) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query parameters required"})
		return "", "", false
	}
	return from, to, true
}

// ============================================
// Response Mappers
// ============================================

type instanceResponse struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Name      string  `json:"name"`
	Time      *string `json:"time"`
	Origin    string  `json:"origin"`
	PatternID string  `json:"patternId,omitempty"`
	RemoteID  string  `json:"remoteId,omitempty"`
}

func toInstanceResponse(inst roster.EventInstance) instanceResponse {
	return instanceResponse{
		ID:        inst.LogicalID,
		Date:      inst.Date,
		Name:      inst.DisplayName,
		Time:      inst.Time,
		Origin:    string(inst.Origin),
		PatternID: inst.SourcePatternID,
		RemoteID:  inst.RemoteID,
	}
}

type warningResponse struct {
	Date        string `json:"date"`
	Name        string `json:"name"`
	PatternName string `json:"patternName"`
}

type statusResponse struct {
	Date        string `json:"date"`
	HasService  bool   `json:"hasService"`
	Total       int    `json:"total"`
	Responded   int    `json:"responded"`
	NotStarted  bool   `json:"notStarted"`
	InProgress  bool   `json:"inProgress"`
	Complete    bool   `json:"complete"`
	Available   bool   `json:"available"`
	Unavailable bool   `json:"unavailable"`
}

func toStatusResponse(s roster.DayStatus) statusResponse {
	return statusResponse{
		Date:        s.Date,
		HasService:  s.HasService,
		Total:       s.Total,
		Responded:   s.Responded,
		NotStarted:  s.NotStarted,
		InProgress:  s.InProgress,
		Complete:    s.Complete,
		Available:   s.Available,
		Unavailable: s.Unavailable,
	}
}

type conflictResponse struct {
	ID         string     `json:"id"`
	MemberID   string     `json:"memberId"`
	EventID    string     `json:"eventId"`
	Date       string     `json:"date"`
	Role       string     `json:"role"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func toConflictResponse(conflict roster.Conflict) conflictResponse {
	return conflictResponse{
		ID:         conflict.ID,
		MemberID:   conflict.MemberID,
		EventID:    conflict.EventLogicalID,
		Date:       conflict.ServiceDate,
		Role:       conflict.RoleName,
		Resolved:   conflict.Resolved,
		ResolvedAt: conflict.ResolvedAt,
		CreatedAt:  conflict.CreatedAt,
	}
}
