package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/roster"
	"github.com/rosterline/rosterline-backend/internal/socket"
	"github.com/rosterline/rosterline-backend/internal/types"
)

// ============================================
// Event Service
// ============================================

// CreateEventInput is a one-off event as submitted by a client.
type CreateEventInput struct {
	Date string  `json:"date" binding:"required"`
	Name string  `json:"name" binding:"required"`
	Time *string `json:"time"`
}

type EventService interface {
	CreateAdhoc(ctx context.Context, teamID string, input CreateEventInput) (*repository.Event, error)
	List(ctx context.Context, teamID, from, to string) ([]*repository.Event, error)
	Cancel(ctx context.Context, teamID, eventID string) error
}

type eventService struct {
	eventRepo   repository.EventRepository
	teamRepo    repository.TeamRepository
	roster      RosterService
	broadcaster *socket.Broadcaster
}

func NewEventService(eventRepo repository.EventRepository, teamRepo repository.TeamRepository, roster RosterService, broadcaster *socket.Broadcaster) EventService {
	return &eventService{
		eventRepo:   eventRepo,
		teamRepo:    teamRepo,
		roster:      roster,
		broadcaster: broadcaster,
	}
}

func (s *eventService) CreateAdhoc(ctx context.Context, teamID string, input CreateEventInput) (*repository.Event, error) {
	if err := s.requireTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if _, err := roster.ParseDate(input.Date); err != nil {
		return nil, ErrInvalidInput
	}
	if input.Name == "" {
		return nil, ErrInvalidInput
	}

	event := &repository.Event{
		ID:     uuid.New().String(),
		TeamID: teamID,
		Date:   input.Date,
		Name:   input.Name,
		Time:   input.Time,
		Status: types.EventActive,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	// Force the next sync for the event's week so the new row lands in the
	// resolved set without waiting out the completed-scope guard.
	s.resyncWeek(ctx, teamID, input.Date)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastEventCreated(teamID, map[string]interface{}{
			"id":   event.ID,
			"date": event.Date,
			"name": event.Name,
			"time": event.Time,
		})
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, teamID, from, to string) ([]*repository.Event, error) {
	if err := s.requireTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	return s.eventRepo.FindByTeamAndRange(ctx, teamID, from, to)
}

func (s *eventService) Cancel(ctx context.Context, teamID, eventID string) error {
	if err := s.requireTeam(ctx, teamID); err != nil {
		return err
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil || event.TeamID != teamID {
		return ErrNotFound
	}
	if err := s.eventRepo.UpdateStatus(ctx, eventID, types.EventCancelled); err != nil {
		return err
	}

	s.resyncWeek(ctx, teamID, event.Date)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastEventCancelled(teamID, eventID)
	}
	return nil
}

// resyncWeek forces a sync of the seven days starting at date. Failures
// are already logged by the roster service and the change is durable, so
// the caller's write is not rolled back.
func (s *eventService) resyncWeek(ctx context.Context, teamID, date string) {
	day, err := roster.ParseDate(date)
	if err != nil {
		return
	}
	to := day.AddDate(0, 0, 6).Format(roster.DateLayout)
	_ = s.roster.Sync(ctx, teamID, date, to, true)
}

func (s *eventService) requireTeam(ctx context.Context, teamID string) error {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team == nil {
		return ErrNotFound
	}
	return nil
}
