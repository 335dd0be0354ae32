package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rosterline/rosterline-backend/internal/config"
	"github.com/rosterline/rosterline-backend/internal/db"
	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/roster"
	"github.com/rosterline/rosterline-backend/internal/socket"
	"github.com/rosterline/rosterline-backend/internal/types"
)

// ============================================
// Roster Service
// ============================================

// RosterService owns the per-team reconciliation sessions and is the only
// path to the engine: resolved instances, per-date status, availability
// submission, remote sync and conflict scans.
type RosterService interface {
	Roster(ctx context.Context, teamID, from, to string) (map[string][]roster.EventInstance, []roster.ResolveWarning, error)
	StatusRange(ctx context.Context, teamID, memberID, from, to string) (map[string]roster.DayStatus, error)
	Submit(ctx context.Context, teamID, memberID, eventLogicalID, status string) error
	Sync(ctx context.Context, teamID, from, to string, force bool) error
	ScanConflicts(ctx context.Context, teamID, from, to string) ([]roster.Conflict, error)
	ResolveConflict(ctx context.Context, teamID, conflictID string) (roster.Conflict, error)
	PendingConflicts(ctx context.Context, teamID string) ([]roster.Conflict, error)

	// InvalidateTeam reloads the team's pattern catalog into its session,
	// dropping all derived state. Called after catalog replacement.
	InvalidateTeam(ctx context.Context, teamID string) error

	// ActiveTeamIDs lists teams with a live session, for the cron re-sync.
	ActiveTeamIDs() []string

	// EvictIdleSessions drops sessions unused for longer than idleFor and
	// returns how many were evicted.
	EvictIdleSessions(idleFor time.Duration) int
}

type rosterService struct {
	cfg         *config.Config
	repos       *repository.Repositories
	store       roster.RemoteStore
	redis       *db.RedisDB
	broadcaster *socket.Broadcaster

	mu       sync.Mutex
	sessions map[string]*roster.Session
}

// NewRosterService creates the roster service. redis and broadcaster may
// be nil; both degrade to no-ops.
func NewRosterService(cfg *config.Config, repos *repository.Repositories, redis *db.RedisDB, broadcaster *socket.Broadcaster) RosterService {
	return &rosterService{
		cfg:         cfg,
		repos:       repos,
		store:       newRemoteStore(repos),
		redis:       redis,
		broadcaster: broadcaster,
		sessions:    make(map[string]*roster.Session),
	}
}

// session returns the team's live session, building one on first use:
// catalog from storage, conflict history seeded, persist failures logged.
func (s *rosterService) session(ctx context.Context, teamID string) (*roster.Session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[teamID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	team, err := s.repos.TeamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("load team: %w", err)
	}
	if team == nil {
		return nil, ErrNotFound
	}

	catalog, err := s.loadCatalog(ctx, teamID)
	if err != nil {
		return nil, err
	}

	stored, err := s.repos.ConflictRepo.FindByTeam(ctx, teamID, true)
	if err != nil {
		return nil, fmt.Errorf("load conflicts: %w", err)
	}

	sess := roster.NewSession(teamID, catalog, s.store)
	sess.LoadConflicts(conflictsFromRows(stored))
	sess.SetPersistFailureHook(func(teamID, memberID, date string, err error) {
		// The local write already stands; surface the miss so a caller can
		// resubmit explicitly.
		log.Printf("[Roster] Deferred persist for team=%s member=%s date=%s: %v", teamID, memberID, date, err)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[teamID]; ok {
		return existing, nil // lost the build race, keep the first session
	}
	s.sessions[teamID] = sess
	return sess, nil
}

func (s *rosterService) loadCatalog(ctx context.Context, teamID string) (*roster.Catalog, error) {
	rows, err := s.repos.PatternRepo.FindByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	patterns := make([]roster.EventPattern, 0, len(rows))
	for _, p := range rows {
		patterns = append(patterns, roster.EventPattern{
			ID:            p.ID,
			Name:          p.Name,
			Weekday:       time.Weekday(p.Weekday),
			DefaultTime:   p.DefaultTime,
			RehearsalRule: p.RehearsalRule,
		})
	}
	return roster.NewCatalog(patterns), nil
}

func (s *rosterService) Roster(ctx context.Context, teamID, from, to string) (map[string][]roster.EventInstance, []roster.ResolveWarning, error) {
	if err := validateRange(from, to); err != nil {
		return nil, nil, err
	}
	sess, err := s.session(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	if err := sess.Refresh(ctx, from, to); err != nil {
		return nil, nil, err
	}

	dates, _ := roster.DatesBetween(from, to)
	out := make(map[string][]roster.EventInstance, len(dates))
	for _, date := range dates {
		if instances := sess.ResolvedInstances(date); len(instances) > 0 {
			out[date] = instances
		}
	}
	return out, sess.Warnings(), nil
}

func (s *rosterService) StatusRange(ctx context.Context, teamID, memberID, from, to string) (map[string]roster.DayStatus, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("status:%s:%s:%s:%s", teamID, memberID, from, to)
	if s.redis != nil {
		var cached map[string]roster.DayStatus
		if err := s.redis.GetCache(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	sess, err := s.session(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := sess.EnsureWindow(ctx, from, to); err != nil {
		return nil, err
	}
	statuses, err := sess.StatusRange(from, to, memberID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		ttl := time.Duration(s.cfg.StatusCacheTTLSeconds) * time.Second
		if err := s.redis.SetCache(ctx, cacheKey, statuses, ttl); err != nil {
			log.Printf("[Roster] Status cache write failed: %v", err)
		}
	}
	return statuses, nil
}

func (s *rosterService) Submit(ctx context.Context, teamID, memberID, eventLogicalID, status string) error {
	if !types.IsValidAvailability(status) {
		return ErrInvalidInput
	}
	sess, err := s.session(ctx, teamID)
	if err != nil {
		return err
	}
	if _, err := sess.Submit(memberID, eventLogicalID, status); err != nil {
		return ErrInvalidInput
	}

	s.invalidateStatusCache(ctx, teamID)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastAvailabilitySubmitted(teamID, memberID, eventLogicalID, status)
	}
	return nil
}

func (s *rosterService) Sync(ctx context.Context, teamID, from, to string, force bool) error {
	if err := validateRange(from, to); err != nil {
		return err
	}
	sess, err := s.session(ctx, teamID)
	if err != nil {
		return err
	}
	if err := sess.Sync(ctx, from, to, force); err != nil {
		// Transient remote failure: local state is untouched and the next
		// triggered sync retries. Logged, not surfaced as fatal.
		log.Printf("[Roster] Sync failed team=%s range=%s..%s: %v", teamID, from, to, err)
		return err
	}

	s.invalidateStatusCache(ctx, teamID)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSyncCompleted(teamID, from, to)
	}
	return nil
}

func (s *rosterService) ScanConflicts(ctx context.Context, teamID, from, to string) ([]roster.Conflict, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	sess, err := s.session(ctx, teamID)
	if err != nil {
		return nil, err
	}
	// The scan reads the ledger, so pull remote responses first; an
	// already-synced scope is a cheap no-op.
	if err := sess.Sync(ctx, from, to, false); err != nil {
		return nil, err
	}

	detected, err := sess.ScanConflicts(ctx, from, to)
	if err != nil {
		return nil, err
	}

	for _, c := range detected {
		row := &repository.Conflict{
			ID:          c.ID,
			TeamID:      teamID,
			MemberID:    c.MemberID,
			EventKey:    c.EventLogicalID,
			ServiceDate: c.ServiceDate,
			RoleName:    c.RoleName,
			Resolved:    false,
			CreatedAt:   c.CreatedAt,
		}
		if err := s.repos.ConflictRepo.Create(ctx, row); err != nil {
			log.Printf("[Roster] Persist conflict %s failed: %v", c.ID, err)
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastConflictDetected(teamID, map[string]interface{}{
				"id":        c.ID,
				"memberId":  c.MemberID,
				"eventId":   c.EventLogicalID,
				"date":      c.ServiceDate,
				"role":      c.RoleName,
				"createdAt": c.CreatedAt,
			})
		}
	}
	return detected, nil
}

func (s *rosterService) ResolveConflict(ctx context.Context, teamID, conflictID string) (roster.Conflict, error) {
	sess, err := s.session(ctx, teamID)
	if err != nil {
		return roster.Conflict{}, err
	}
	resolved, ok := sess.ResolveConflict(conflictID)
	if !ok {
		return roster.Conflict{}, ErrNotFound
	}
	if err := s.repos.ConflictRepo.MarkResolved(ctx, conflictID, *resolved.ResolvedAt); err != nil {
		return roster.Conflict{}, fmt.Errorf("mark resolved: %w", err)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastConflictResolved(teamID, conflictID)
	}
	return resolved, nil
}

func (s *rosterService) PendingConflicts(ctx context.Context, teamID string) ([]roster.Conflict, error) {
	sess, err := s.session(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return sess.PendingConflicts(), nil
}

func (s *rosterService) InvalidateTeam(ctx context.Context, teamID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[teamID]
	s.mu.Unlock()
	if !ok {
		return nil // no live session, nothing derived to drop
	}

	catalog, err := s.loadCatalog(ctx, teamID)
	if err != nil {
		return err
	}
	sess.ReplaceCatalog(catalog)
	s.invalidateStatusCache(ctx, teamID)
	return nil
}

func (s *rosterService) ActiveTeamIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (s *rosterService) EvictIdleSessions(idleFor time.Duration) int {
	cutoff := time.Now().Add(-idleFor)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, sess := range s.sessions {
		if sess.LastUsed().Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (s *rosterService) invalidateStatusCache(ctx context.Context, teamID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidateCache(ctx, "status:"+teamID+":*"); err != nil {
		log.Printf("[Roster] Status cache invalidation failed: %v", err)
	}
}

func validateRange(from, to string) error {
	start, err := roster.ParseDate(from)
	if err != nil {
		return ErrInvalidDateRange
	}
	end, err := roster.ParseDate(to)
	if err != nil {
		return ErrInvalidDateRange
	}
	if end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

func conflictsFromRows(rows []*repository.Conflict) []roster.Conflict {
	out := make([]roster.Conflict, 0, len(rows))
	for _, c := range rows {
		out = append(out, roster.Conflict{
			ID:             c.ID,
			MemberID:       c.MemberID,
			EventLogicalID: c.EventKey,
			ServiceDate:    c.ServiceDate,
			RoleName:       c.RoleName,
			Resolved:       c.Resolved,
			ResolvedAt:     c.ResolvedAt,
			CreatedAt:      c.CreatedAt,
		})
	}
	return out
}
