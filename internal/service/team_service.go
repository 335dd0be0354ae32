package service

import (
	"context"

	"github.com/rosterline/rosterline-backend/internal/repository"
)

// ============================================
// Team Service
// ============================================

type TeamService interface {
	GetTeam(ctx context.Context, teamID string) (*repository.Team, []*repository.Member, error)
	ListTeams(ctx context.Context) ([]*repository.Team, error)
	GetMembers(ctx context.Context, teamID string) ([]*repository.Member, error)
	RequireMembership(ctx context.Context, teamID, memberID string) error
}

type teamService struct {
	teamRepo repository.TeamRepository
}

func NewTeamService(teamRepo repository.TeamRepository) TeamService {
	return &teamService{teamRepo: teamRepo}
}

func (s *teamService) GetTeam(ctx context.Context, teamID string) (*repository.Team, []*repository.Member, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	if team == nil {
		return nil, nil, ErrNotFound
	}
	members, err := s.teamRepo.FindMembers(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	return team, members, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]*repository.Team, error) {
	return s.teamRepo.FindAll(ctx)
}

func (s *teamService) GetMembers(ctx context.Context, teamID string) ([]*repository.Member, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrNotFound
	}
	return s.teamRepo.FindMembers(ctx, teamID)
}

// RequireMembership returns ErrForbidden when the member does not belong
// to the team, ErrNotFound when the team itself is missing.
func (s *teamService) RequireMembership(ctx context.Context, teamID, memberID string) error {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team == nil {
		return ErrNotFound
	}
	ok, err := s.teamRepo.IsMember(ctx, teamID, memberID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
