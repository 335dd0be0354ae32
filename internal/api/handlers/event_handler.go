package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterline/rosterline-backend/internal/api/middleware"
	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/service"
)

type EventHandler struct {
	eventService service.EventService
}

type eventResponse struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Name   string  `json:"name"`
	Time   *string `json:"time"`
	Status string  `json:"status"`
}

func toEventResponse(e *repository.Event) eventResponse {
	return eventResponse{
		ID:     e.ID,
		Date:   e.Date,
		Name:   e.Name,
		Time:   e.Time,
		Status: e.Status,
	}
}

func (h *EventHandler) List(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}
	teamID := c.Param("id")
	from, to, ok := rangeParams(c)
	if !ok {
		return
	}

	events, err := h.eventService.List(c.Request.Context(), teamID, from, to)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

func (h *EventHandler) Create(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")

	var req service.CreateEventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[Event Create] TeamID: %s, MemberID: %s, Date: %s, Name: %s", teamID, memberID, req.Date, req.Name)

	event, err := h.eventService.CreateAdhoc(c.Request.Context(), teamID, req)
	if err != nil {
		log.Printf("[Event Create] Failed - TeamID: %s, Error: %v", teamID, err)
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEventResponse(event))
}

func (h *EventHandler) Cancel(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}
	teamID := c.Param("id")
	eventID := c.Param("eventId")

	if err := h.eventService.Cancel(c.Request.Context(), teamID, eventID); err != nil {
		log.Printf("[Event Cancel] Failed - EventID: %s, Error: %v", eventID, err)
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
