package roster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type persistCall struct {
	teamID      string
	memberID    string
	date        string
	isAvailable bool
}

type fakeStore struct {
	mu           sync.Mutex
	instances    []RawInstance
	availability []RawAvailability
	assignments  []RawAssignment

	persisted  []persistCall
	persistErr error

	availabilityGate  chan struct{} // when set, FetchAvailability blocks until closed
	availabilityCalls int
}

func (f *fakeStore) FetchEventInstances(ctx context.Context, teamID, from, to string) ([]RawInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RawInstance(nil), f.instances...), nil
}

func (f *fakeStore) FetchAvailability(ctx context.Context, teamID, from, to string) ([]RawAvailability, error) {
	f.mu.Lock()
	gate := f.availabilityGate
	f.availabilityCalls++
	rows := append([]RawAvailability(nil), f.availability...)
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return rows, nil
}

func (f *fakeStore) PersistAvailability(ctx context.Context, teamID, memberID, date string, isAvailable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.persistErr != nil {
		return f.persistErr
	}
	f.persisted = append(f.persisted, persistCall{teamID, memberID, date, isAvailable})
	return nil
}

func (f *fakeStore) FetchAssignments(ctx context.Context, teamID, from, to string) ([]RawAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RawAssignment(nil), f.assignments...), nil
}

func newTestSession(store *fakeStore) *Session {
	s := NewSession("team1", testCatalog(), store)
	base := time.Date(2024, 1, 12, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	return s
}

func TestSessionSubmitIsImmediatelyVisible(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(store)
	if err := s.Refresh(context.Background(), sunday, sunday); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	eventID := LogicalID(sunday, "Service A")
	if _, err := s.Submit("m1", eventID, StatusAvailable); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	status := s.StatusForDate(sunday, "m1")
	if status.Responded != 1 || !status.InProgress {
		t.Errorf("submit not visible to status: %+v", status)
	}

	s.WaitForPersists()
	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.persisted) != 1 {
		t.Fatalf("got %d persists, want 1", len(store.persisted))
	}
	p := store.persisted[0]
	if p.teamID != "team1" || p.memberID != "m1" || p.date != sunday || !p.isAvailable {
		t.Errorf("unexpected persist %+v", p)
	}
}

func TestSessionSubmitPersistFailureKeepsLocalState(t *testing.T) {
	store := &fakeStore{persistErr: errors.New("remote down")}
	s := newTestSession(store)
	if err := s.Refresh(context.Background(), sunday, sunday); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	var hookMu sync.Mutex
	var hooked []string
	s.SetPersistFailureHook(func(teamID, memberID, date string, err error) {
		hookMu.Lock()
		defer hookMu.Unlock()
		hooked = append(hooked, memberID+"@"+date)
	})

	eventID := LogicalID(sunday, "Service A")
	if _, err := s.Submit("m1", eventID, StatusUnavailable); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	s.WaitForPersists()

	if status := s.StatusForDate(sunday, "m1"); status.Responded != 1 {
		t.Errorf("local state lost on persist failure: %+v", status)
	}
	hookMu.Lock()
	defer hookMu.Unlock()
	if len(hooked) != 1 || hooked[0] != "m1@"+sunday {
		t.Errorf("failure hook not invoked as expected: %v", hooked)
	}
}

func TestSessionSubmitRejectsUnknownStatus(t *testing.T) {
	s := newTestSession(&fakeStore{})
	if _, err := s.Submit("m1", "ev", "maybe"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestSessionSyncMergesRemoteAvailability(t *testing.T) {
	remoteAt := time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC)
	store := &fakeStore{
		availability: []RawAvailability{
			{MemberID: "m1", Date: sunday, IsAvailable: true, UpdatedAt: remoteAt},
		},
	}
	s := newTestSession(store)

	if err := s.Sync(context.Background(), sunday, sunday, false); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	// The per-date remote row expands to a record per resolved instance.
	status := s.StatusForDate(sunday, "m1")
	if !status.Complete || status.Responded != 2 {
		t.Errorf("remote row not expanded across instances: %+v", status)
	}
	if s.Phase() != SyncIdle {
		t.Errorf("phase = %q after sync, want idle", s.Phase())
	}
}

func TestSessionSyncDoesNotClobberNewerLocalWrite(t *testing.T) {
	remoteAt := time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC)
	store := &fakeStore{
		availability: []RawAvailability{
			{MemberID: "m1", Date: sunday, IsAvailable: true, UpdatedAt: remoteAt},
		},
	}
	s := newTestSession(store) // session clock runs in 2024-01-12, after remoteAt
	if err := s.Refresh(context.Background(), sunday, sunday); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	eventID := LogicalID(sunday, "Service A")
	if _, err := s.Submit("m1", eventID, StatusUnavailable); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	s.WaitForPersists()

	if err := s.Sync(context.Background(), sunday, sunday, false); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	rec, ok := s.ledgerRecord("m1", eventID)
	if !ok || rec.Status != StatusUnavailable {
		t.Errorf("stale remote pull clobbered local write: %+v", rec)
	}
}

// ledgerRecord is a test accessor.
func (s *Session) ledgerRecord(memberID, eventID string) (AvailabilityRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(memberID, eventID)
}

func TestSessionSyncCoalescesConcurrentCalls(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{availabilityGate: gate}
	s := newTestSession(store)

	done := make(chan error, 1)
	go func() { done <- s.Sync(context.Background(), sunday, sunday, false) }()

	// Wait for the first sync to reach the blocked fetch.
	deadline := time.After(2 * time.Second)
	for {
		store.mu.Lock()
		calls := store.availabilityCalls
		store.mu.Unlock()
		if calls > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first sync never reached the store")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// A second call while one is in flight is a no-op.
	if err := s.Sync(context.Background(), sunday, sunday, false); err != nil {
		t.Fatalf("coalesced sync returned error: %v", err)
	}
	if s.Phase() != SyncRunning {
		t.Errorf("phase = %q while first sync in flight", s.Phase())
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first sync: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.availabilityCalls != 1 {
		t.Errorf("store hit %d times, want 1", store.availabilityCalls)
	}
}

func TestSessionSyncSkipsCompletedScopeUnlessForced(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(store)

	if err := s.Sync(context.Background(), sunday, sunday, false); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := s.Sync(context.Background(), sunday, sunday, false); err != nil {
		t.Fatalf("repeat Sync: %v", err)
	}
	store.mu.Lock()
	calls := store.availabilityCalls
	store.mu.Unlock()
	if calls != 1 {
		t.Fatalf("completed scope re-fetched: %d calls", calls)
	}

	if err := s.Sync(context.Background(), sunday, sunday, true); err != nil {
		t.Fatalf("forced Sync: %v", err)
	}
	store.mu.Lock()
	calls = store.availabilityCalls
	store.mu.Unlock()
	if calls != 2 {
		t.Errorf("forced sync did not re-fetch: %d calls", calls)
	}

	// A different scope is fetched on its own.
	if err := s.Sync(context.Background(), sunday, thursday, false); err != nil {
		t.Fatalf("new scope Sync: %v", err)
	}
	store.mu.Lock()
	calls = store.availabilityCalls
	store.mu.Unlock()
	if calls != 3 {
		t.Errorf("new scope skipped: %d calls", calls)
	}
}

func TestSessionReplaceCatalogInvalidates(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(store)
	if err := s.Sync(context.Background(), sunday, sunday, false); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	s.ReplaceCatalog(NewCatalog([]EventPattern{
		{ID: "p9", Name: "Evening Service", Weekday: time.Sunday},
	}))

	if got := s.ResolvedInstances(sunday); len(got) != 0 {
		t.Errorf("resolved window survived catalog replacement: %+v", got)
	}

	// Completed scopes were invalidated, so the next sync fetches again.
	if err := s.Sync(context.Background(), sunday, sunday, false); err != nil {
		t.Fatalf("Sync after replace: %v", err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.availabilityCalls != 2 {
		t.Errorf("sync after catalog replacement skipped: %d calls", store.availabilityCalls)
	}
}

func TestSessionStatusMemoization(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(store)
	if err := s.Refresh(context.Background(), sunday, sunday); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	first := s.StatusForDate(sunday, "m1")
	second := s.StatusForDate(sunday, "m1")
	if first != second {
		t.Errorf("memoized reads differ: %+v vs %+v", first, second)
	}

	if _, err := s.Submit("m1", LogicalID(sunday, "Service A"), StatusAvailable); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	third := s.StatusForDate(sunday, "m1")
	if third.Responded != 1 {
		t.Errorf("status cache not invalidated by submit: %+v", third)
	}
	s.WaitForPersists()
}

func TestSessionConflictLifecycle(t *testing.T) {
	store := &fakeStore{
		assignments: []RawAssignment{
			{MemberID: "m1", Date: sunday, EventName: "Service A", Role: "vocals"},
		},
	}
	s := newTestSession(store)
	if err := s.Refresh(context.Background(), sunday, sunday); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	eventID := LogicalID(sunday, "Service A")
	if _, err := s.Submit("m1", eventID, StatusUnavailable); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	s.WaitForPersists()

	detected, err := s.ScanConflicts(context.Background(), sunday, sunday)
	if err != nil {
		t.Fatalf("ScanConflicts: %v", err)
	}
	if len(detected) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(detected))
	}
	if len(s.PendingConflicts()) != 1 {
		t.Fatalf("pending conflicts = %d, want 1", len(s.PendingConflicts()))
	}

	// Rescan is idempotent.
	again, err := s.ScanConflicts(context.Background(), sunday, sunday)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("rescan duplicated conflicts: %+v", again)
	}

	resolved, ok := s.ResolveConflict(detected[0].ID)
	if !ok || !resolved.Resolved || resolved.ResolvedAt == nil {
		t.Fatalf("ResolveConflict = %+v, %v", resolved, ok)
	}
	if len(s.PendingConflicts()) != 0 {
		t.Error("resolved conflict still pending")
	}
	if len(s.Conflicts(true)) != 1 {
		t.Error("resolution deleted the conflict instead of acknowledging it")
	}

	// Flip after resolution yields a fresh conflict.
	if _, err := s.Submit("m1", eventID, StatusAvailable); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := s.Submit("m1", eventID, StatusUnavailable); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	s.WaitForPersists()
	fresh, err := s.ScanConflicts(context.Background(), sunday, sunday)
	if err != nil {
		t.Fatalf("post-flip scan: %v", err)
	}
	if len(fresh) != 1 || fresh[0].Resolved {
		t.Errorf("flip after resolution did not produce a fresh conflict: %+v", fresh)
	}

	if _, ok := s.ResolveConflict("no-such-id"); ok {
		t.Error("resolving unknown conflict id succeeded")
	}
}
