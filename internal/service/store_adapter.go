package service

import (
	"context"

	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/roster"
)

// remoteStore adapts the repositories to the narrow roster.RemoteStore
// contract a session is built on, translating rows to the engine's raw
// shapes.
type remoteStore struct {
	repos *repository.Repositories
}

func newRemoteStore(repos *repository.Repositories) roster.RemoteStore {
	return &remoteStore{repos: repos}
}

func (s *remoteStore) FetchEventInstances(ctx context.Context, teamID, from, to string) ([]roster.RawInstance, error) {
	rows, err := s.repos.EventRepo.FindByTeamAndRange(ctx, teamID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]roster.RawInstance, 0, len(rows))
	for _, e := range rows {
		out = append(out, roster.RawInstance{
			ID:        e.ID,
			Date:      e.Date,
			Name:      e.Name,
			Time:      e.Time,
			Status:    e.Status,
			UpdatedAt: e.UpdatedAt,
		})
	}
	return out, nil
}

func (s *remoteStore) FetchAvailability(ctx context.Context, teamID, from, to string) ([]roster.RawAvailability, error) {
	rows, err := s.repos.AvailabilityRepo.FindByTeamAndRange(ctx, teamID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]roster.RawAvailability, 0, len(rows))
	for _, a := range rows {
		out = append(out, roster.RawAvailability{
			MemberID:    a.MemberID,
			Date:        a.Date,
			IsAvailable: a.IsAvailable,
			UpdatedAt:   a.UpdatedAt,
		})
	}
	return out, nil
}

func (s *remoteStore) PersistAvailability(ctx context.Context, teamID, memberID, date string, isAvailable bool) error {
	return s.repos.AvailabilityRepo.Upsert(ctx, &repository.Availability{
		TeamID:      teamID,
		MemberID:    memberID,
		Date:        date,
		IsAvailable: isAvailable,
	})
}

func (s *remoteStore) FetchAssignments(ctx context.Context, teamID, from, to string) ([]roster.RawAssignment, error) {
	rows, err := s.repos.AssignmentRepo.FindByTeamAndRange(ctx, teamID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]roster.RawAssignment, 0, len(rows))
	for _, a := range rows {
		out = append(out, roster.RawAssignment{
			MemberID:  a.MemberID,
			Date:      a.Date,
			EventName: a.EventName,
			Role:      a.Role,
		})
	}
	return out, nil
}
