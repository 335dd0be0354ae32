package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/roster"
	"github.com/rosterline/rosterline-backend/internal/socket"
)

// ============================================
// Pattern Service
// ============================================

// PatternInput is one recurring event definition as submitted by a client.
type PatternInput struct {
	Name          string  `json:"name" binding:"required"`
	Weekday       int     `json:"weekday"`
	DefaultTime   *string `json:"defaultTime"`
	RehearsalRule *string `json:"rehearsalRule"`
}

type PatternService interface {
	List(ctx context.Context, teamID string) ([]*repository.EventPattern, error)

	// Replace swaps the team's entire catalog for the given set. Partial
	// edits are not supported; the resolver treats the catalog as a unit.
	Replace(ctx context.Context, teamID string, inputs []PatternInput) ([]*repository.EventPattern, error)
}

type patternService struct {
	patternRepo repository.PatternRepository
	teamRepo    repository.TeamRepository
	roster      RosterService
	broadcaster *socket.Broadcaster
}

func NewPatternService(patternRepo repository.PatternRepository, teamRepo repository.TeamRepository, roster RosterService, broadcaster *socket.Broadcaster) PatternService {
	return &patternService{
		patternRepo: patternRepo,
		teamRepo:    teamRepo,
		roster:      roster,
		broadcaster: broadcaster,
	}
}

func (s *patternService) List(ctx context.Context, teamID string) ([]*repository.EventPattern, error) {
	if err := s.requireTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.patternRepo.FindByTeam(ctx, teamID)
}

func (s *patternService) Replace(ctx context.Context, teamID string, inputs []PatternInput) ([]*repository.EventPattern, error) {
	if err := s.requireTeam(ctx, teamID); err != nil {
		return nil, err
	}

	rows := make([]*repository.EventPattern, 0, len(inputs))
	// Resolution keys instances by normalized name, so two patterns that
	// normalize to the same name would shadow each other.
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if in.Name == "" || in.Weekday < 0 || in.Weekday > 6 {
			return nil, ErrInvalidInput
		}
		key := strings.ToLower(roster.NormalizeDisplayName(in.Name))
		if seen[key] {
			return nil, ErrInvalidInput
		}
		seen[key] = true
		if in.RehearsalRule != nil && *in.RehearsalRule != "" {
			if _, err := rrule.StrToROption(*in.RehearsalRule); err != nil {
				return nil, ErrInvalidInput
			}
		}
		rows = append(rows, &repository.EventPattern{
			ID:            uuid.New().String(),
			TeamID:        teamID,
			Name:          in.Name,
			Weekday:       in.Weekday,
			DefaultTime:   in.DefaultTime,
			RehearsalRule: in.RehearsalRule,
		})
	}

	if err := s.patternRepo.ReplaceAll(ctx, teamID, rows); err != nil {
		return nil, err
	}

	// Drop the live session's derived state so the next resolve pass runs
	// against the new catalog.
	if err := s.roster.InvalidateTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastPatternsReplaced(teamID, len(rows))
	}
	return rows, nil
}

func (s *patternService) requireTeam(ctx context.Context, teamID string) error {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team == nil {
		return ErrNotFound
	}
	return nil
}
