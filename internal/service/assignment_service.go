package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/roster"
	"github.com/rosterline/rosterline-backend/internal/socket"
)

// ============================================
// Assignment Service
// ============================================

// CreateAssignmentInput places a member into a role for one event.
type CreateAssignmentInput struct {
	MemberID  string `json:"memberId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	EventName string `json:"eventName" binding:"required"`
	Role      string `json:"role" binding:"required"`
}

type AssignmentService interface {
	Create(ctx context.Context, teamID string, input CreateAssignmentInput) (*repository.Assignment, error)
	List(ctx context.Context, teamID, from, to string) ([]*repository.Assignment, error)
	Delete(ctx context.Context, teamID, assignmentID string) error
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	teamRepo       repository.TeamRepository
	roster         RosterService
	broadcaster    *socket.Broadcaster
}

func NewAssignmentService(assignmentRepo repository.AssignmentRepository, teamRepo repository.TeamRepository, roster RosterService, broadcaster *socket.Broadcaster) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		teamRepo:       teamRepo,
		roster:         roster,
		broadcaster:    broadcaster,
	}
}

func (s *assignmentService) Create(ctx context.Context, teamID string, input CreateAssignmentInput) (*repository.Assignment, error) {
	if _, err := roster.ParseDate(input.Date); err != nil {
		return nil, ErrInvalidInput
	}
	if input.EventName == "" || input.Role == "" {
		return nil, ErrInvalidInput
	}
	member, err := s.teamRepo.FindMember(ctx, teamID, input.MemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotFound
	}

	assignment := &repository.Assignment{
		ID:        uuid.New().String(),
		TeamID:    teamID,
		MemberID:  input.MemberID,
		Date:      input.Date,
		EventName: input.EventName,
		Role:      input.Role,
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}

	// A new assignment against an already-unavailable member is a conflict
	// the moment it lands; scan its date right away.
	if _, err := s.roster.ScanConflicts(ctx, teamID, input.Date, input.Date); err != nil {
		log.Printf("[Assignment] Conflict scan after create failed: %v", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAssignmentCreated(teamID, map[string]interface{}{
			"id":        assignment.ID,
			"memberId":  assignment.MemberID,
			"date":      assignment.Date,
			"eventName": assignment.EventName,
			"role":      assignment.Role,
		})
	}
	return assignment, nil
}

func (s *assignmentService) List(ctx context.Context, teamID, from, to string) ([]*repository.Assignment, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	return s.assignmentRepo.FindByTeamAndRange(ctx, teamID, from, to)
}

func (s *assignmentService) Delete(ctx context.Context, teamID, assignmentID string) error {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment == nil || assignment.TeamID != teamID {
		return ErrNotFound
	}
	return s.assignmentRepo.Delete(ctx, assignmentID)
}
