package service

import (
	"context"

	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/roster"
	"github.com/rosterline/rosterline-backend/internal/socket"
)

// ============================================
// Conflict Service
// ============================================

type ConflictService interface {
	List(ctx context.Context, teamID string, includeResolved bool) ([]*repository.Conflict, error)
	Pending(ctx context.Context, teamID string) ([]roster.Conflict, error)
	Resolve(ctx context.Context, teamID, conflictID string) (roster.Conflict, error)
	Scan(ctx context.Context, teamID, from, to string) ([]roster.Conflict, error)
}

type conflictService struct {
	conflictRepo repository.ConflictRepository
	roster       RosterService
	broadcaster  *socket.Broadcaster
}

func NewConflictService(conflictRepo repository.ConflictRepository, roster RosterService, broadcaster *socket.Broadcaster) ConflictService {
	return &conflictService{
		conflictRepo: conflictRepo,
		roster:       roster,
		broadcaster:  broadcaster,
	}
}

// List reads persisted history; Pending reads the live session, which also
// holds conflicts detected since the last restart.
func (s *conflictService) List(ctx context.Context, teamID string, includeResolved bool) ([]*repository.Conflict, error) {
	return s.conflictRepo.FindByTeam(ctx, teamID, includeResolved)
}

func (s *conflictService) Pending(ctx context.Context, teamID string) ([]roster.Conflict, error) {
	return s.roster.PendingConflicts(ctx, teamID)
}

func (s *conflictService) Resolve(ctx context.Context, teamID, conflictID string) (roster.Conflict, error) {
	return s.roster.ResolveConflict(ctx, teamID, conflictID)
}

func (s *conflictService) Scan(ctx context.Context, teamID, from, to string) ([]roster.Conflict, error) {
	return s.roster.ScanConflicts(ctx, teamID, from, to)
}
