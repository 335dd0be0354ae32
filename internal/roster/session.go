package roster

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// RawAvailability is a member availability row as stored remotely: one row
// per member and date, applying to every event resolved for that date.
type RawAvailability struct {
	MemberID    string
	Date        string
	IsAvailable bool
	UpdatedAt   time.Time
}

// RawAssignment is an assignment row as stored remotely, keyed by date and
// event name rather than logical ID.
type RawAssignment struct {
	MemberID  string
	Date      string
	EventName string
	Role      string
}

// RemoteStore is the narrow interface the session uses to reach the remote
// relational store. Implementations may back it with any row-oriented
// store exposing equivalent read/write semantics.
type RemoteStore interface {
	FetchEventInstances(ctx context.Context, teamID, from, to string) ([]RawInstance, error)
	FetchAvailability(ctx context.Context, teamID, from, to string) ([]RawAvailability, error)
	PersistAvailability(ctx context.Context, teamID, memberID, date string, isAvailable bool) error
	FetchAssignments(ctx context.Context, teamID, from, to string) ([]RawAssignment, error)
}

// SyncPhase is the explicit re-entrancy state of the session's sync loop.
type SyncPhase string

const (
	SyncIdle    SyncPhase = "idle"
	SyncRunning SyncPhase = "syncing"
)

// PersistFailureHook is invoked when a fire-and-forget remote persist
// fails, giving callers a place to hang an explicit retry.
type PersistFailureHook func(teamID, memberID, date string, err error)

const persistTimeout = 10 * time.Second

type statusKey struct {
	date     string
	memberID string
}

type cachedStatus struct {
	instVersion   uint64
	ledgerVersion uint64
	status        DayStatus
}

// Session reconciles one team's pattern catalog, resolved event instances
// and availability ledger behind a single mutex. Local state is
// authoritative for readers; remote state converges through Sync and
// fire-and-forget persists.
type Session struct {
	teamID string
	store  RemoteStore
	now    func() time.Time

	mu          sync.Mutex
	catalog     *Catalog
	resolved    ResolveResult
	instVersion uint64
	windowFrom  string
	windowTo    string

	ledger    *Ledger
	conflicts []Conflict

	phase     SyncPhase
	completed map[string]bool

	statusCache      map[statusKey]cachedStatus
	onPersistFailure PersistFailureHook
	lastUsed         time.Time

	// persistWG lets tests wait for in-flight fire-and-forget persists.
	persistWG sync.WaitGroup
}

// NewSession builds a session for one team with its injected collaborators.
func NewSession(teamID string, catalog *Catalog, store RemoteStore) *Session {
	return &Session{
		teamID:      teamID,
		store:       store,
		now:         time.Now,
		catalog:     catalog,
		resolved:    ResolveResult{ByDate: make(map[string][]EventInstance)},
		ledger:      NewLedger(),
		phase:       SyncIdle,
		completed:   make(map[string]bool),
		statusCache: make(map[statusKey]cachedStatus),
	}
}

// SetClock overrides the session clock. Intended for tests.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetPersistFailureHook installs the retry hook for failed remote persists.
func (s *Session) SetPersistFailureHook(h PersistFailureHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPersistFailure = h
}

// TeamID returns the owning team.
func (s *Session) TeamID() string {
	return s.teamID
}

// LastUsed reports when the session last served a caller.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touchLocked() {
	s.lastUsed = s.now()
}

// ReplaceCatalog swaps in a new pattern catalog and invalidates everything
// derived from the old one: the resolved window, completed sync scopes and
// memoized statuses. The ledger survives; orphaned records are excluded
// from status computation rather than purged.
func (s *Session) ReplaceCatalog(catalog *Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
	s.resolved = ResolveResult{ByDate: make(map[string][]EventInstance)}
	s.windowFrom, s.windowTo = "", ""
	s.instVersion++
	s.completed = make(map[string]bool)
	s.statusCache = make(map[statusKey]cachedStatus)
	s.touchLocked()
}

// Refresh fetches remote event rows for the window and rebuilds the
// resolved instance list from scratch.
func (s *Session) Refresh(ctx context.Context, from, to string) error {
	raw, err := s.store.FetchEventInstances(ctx, s.teamID, from, to)
	if err != nil {
		return fmt.Errorf("refresh instances: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := Resolve(s.catalog, from, to, raw)
	if err != nil {
		return err
	}
	s.resolved = result
	s.windowFrom, s.windowTo = from, to
	s.instVersion++
	s.touchLocked()
	return nil
}

// EnsureWindow refreshes only when the session does not already hold the
// requested window.
func (s *Session) EnsureWindow(ctx context.Context, from, to string) error {
	s.mu.Lock()
	held := s.windowFrom == from && s.windowTo == to
	s.mu.Unlock()
	if held {
		return nil
	}
	return s.Refresh(ctx, from, to)
}

// Sync pulls remote availability for the window and merges it into the
// ledger under the freshness rules. A call while another sync is running
// is a no-op, and a scope that already completed is skipped unless forced.
func (s *Session) Sync(ctx context.Context, from, to string, force bool) error {
	scope := from + ".." + to

	s.mu.Lock()
	if s.phase == SyncRunning {
		s.mu.Unlock()
		log.Printf("[Sync] Team %s already syncing, skipping %s", s.teamID, scope)
		return nil
	}
	if s.completed[scope] && !force {
		s.mu.Unlock()
		return nil
	}
	s.phase = SyncRunning
	s.touchLocked()
	s.mu.Unlock()

	err := s.syncFetchAndMerge(ctx, from, to, scope)

	s.mu.Lock()
	s.phase = SyncIdle
	s.mu.Unlock()
	return err
}

func (s *Session) syncFetchAndMerge(ctx context.Context, from, to, scope string) error {
	if err := s.EnsureWindow(ctx, from, to); err != nil {
		return err
	}
	rows, err := s.store.FetchAvailability(ctx, s.teamID, from, to)
	if err != nil {
		return fmt.Errorf("sync availability: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		status := StatusUnavailable
		if row.IsAvailable {
			status = StatusAvailable
		}
		for _, inst := range s.resolved.ByDate[row.Date] {
			s.ledger.Merge(AvailabilityRecord{
				MemberID:       row.MemberID,
				EventLogicalID: inst.LogicalID,
				Status:         status,
				UpdatedAt:      row.UpdatedAt,
			}, inst.RemoteUpdatedAt)
		}
	}
	s.completed[scope] = true
	return nil
}

// Phase reports the sync state machine's current phase.
func (s *Session) Phase() SyncPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Submit records a member's response locally and schedules the remote
// persist. The local write is synchronous, applied in call order and
// immediately visible to status computation; remote failure is logged and
// handed to the failure hook, never rolled back.
func (s *Session) Submit(memberID, eventLogicalID, status string) (AvailabilityRecord, error) {
	if status != StatusAvailable && status != StatusUnavailable {
		return AvailabilityRecord{}, fmt.Errorf("submit: unknown availability status %q", status)
	}

	s.mu.Lock()
	rec := s.ledger.Submit(memberID, eventLogicalID, status, s.now())
	s.touchLocked()
	hook := s.onPersistFailure
	s.mu.Unlock()

	date := datePartOf(eventLogicalID)
	s.persistWG.Add(1)
	go func() {
		defer s.persistWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		err := s.store.PersistAvailability(ctx, s.teamID, memberID, date, status == StatusAvailable)
		if err != nil {
			log.Printf("[Sync] Persist availability failed team=%s member=%s date=%s: %v", s.teamID, memberID, date, err)
			if hook != nil {
				hook(s.teamID, memberID, date, err)
			}
		}
	}()
	return rec, nil
}

// WaitForPersists blocks until all in-flight fire-and-forget persists have
// finished. Intended for tests and shutdown.
func (s *Session) WaitForPersists() {
	s.persistWG.Wait()
}

func datePartOf(logicalID string) string {
	if i := strings.Index(logicalID, "#"); i > 0 {
		return logicalID[:i]
	}
	return logicalID
}

// ResolvedInstances returns the canonical instance list for a date.
func (s *Session) ResolvedInstances(date string) []EventInstance {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return append([]EventInstance(nil), s.resolved.ByDate[date]...)
}

// LookupInstance finds a resolved instance by logical ID.
func (s *Session) LookupInstance(logicalID string) (EventInstance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved.Lookup(logicalID)
}

// Warnings returns the data-quality warnings from the last resolution pass.
func (s *Session) Warnings() []ResolveWarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ResolveWarning(nil), s.resolved.Warnings...)
}

// StatusForDate computes the member's completion status for a date,
// memoized on the instance-set and ledger versions so repeated reads
// between changes cost a map lookup.
func (s *Session) StatusForDate(date, memberID string) DayStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	key := statusKey{date: date, memberID: memberID}
	if cached, ok := s.statusCache[key]; ok &&
		cached.instVersion == s.instVersion && cached.ledgerVersion == s.ledger.Version() {
		return cached.status
	}

	status := ComputeDayStatus(date, s.resolved.ByDate[date], s.ledger.ForMember(memberID))
	s.statusCache[key] = cachedStatus{
		instVersion:   s.instVersion,
		ledgerVersion: s.ledger.Version(),
		status:        status,
	}
	return status
}

// StatusRange computes per-date statuses for every date in [from, to].
func (s *Session) StatusRange(from, to, memberID string) (map[string]DayStatus, error) {
	dates, err := DatesBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("status range: %w", err)
	}
	out := make(map[string]DayStatus, len(dates))
	for _, date := range dates {
		out[date] = s.StatusForDate(date, memberID)
	}
	return out, nil
}

// LoadConflicts seeds the session's conflict history, typically from
// storage when the session is built.
func (s *Session) LoadConflicts(conflicts []Conflict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = append([]Conflict(nil), conflicts...)
}

// ScanConflicts fetches assignments for the window and runs conflict
// detection against the ledger, returning only the newly detected
// conflicts. Detected conflicts join the session's history immediately.
func (s *Session) ScanConflicts(ctx context.Context, from, to string) ([]Conflict, error) {
	raw, err := s.store.FetchAssignments(ctx, s.teamID, from, to)
	if err != nil {
		return nil, fmt.Errorf("scan conflicts: %w", err)
	}

	assignments := make([]Assignment, 0, len(raw))
	for _, a := range raw {
		if a.Date == "" || a.EventName == "" {
			continue
		}
		assignments = append(assignments, Assignment{
			EventLogicalID: LogicalID(a.Date, a.EventName),
			MemberID:       a.MemberID,
			Role:           a.Role,
			Date:           a.Date,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	detected := DetectConflicts(assignments, s.ledger, s.conflicts, s.now())
	s.conflicts = append(s.conflicts, detected...)
	s.touchLocked()
	return detected, nil
}

// Conflicts returns the session's conflict history, pending only unless
// includeResolved is set.
func (s *Session) Conflicts(includeResolved bool) []Conflict {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Conflict
	for _, c := range s.conflicts {
		if c.Resolved && !includeResolved {
			continue
		}
		out = append(out, c)
	}
	return out
}

// PendingConflicts returns the unresolved conflicts.
func (s *Session) PendingConflicts() []Conflict {
	return s.Conflicts(false)
}

// ResolveConflict marks a conflict resolved. Resolution is an
// acknowledgment only: the underlying assignment and availability record
// are untouched, and the pair may conflict again after a later flip.
func (s *Session) ResolveConflict(conflictID string) (Conflict, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conflicts {
		if s.conflicts[i].ID != conflictID || s.conflicts[i].Resolved {
			continue
		}
		at := s.now()
		s.conflicts[i].Resolved = true
		s.conflicts[i].ResolvedAt = &at
		s.touchLocked()
		return s.conflicts[i], true
	}
	return Conflict{}, false
}
