package roster

import (
	"testing"
	"time"
)

var (
	t0 = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
	t2 = t0.Add(2 * time.Hour)
)

func TestLedgerSubmitOverwrites(t *testing.T) {
	l := NewLedger()
	l.Submit("m1", "2024-01-14#service a", StatusAvailable, t0)
	l.Submit("m1", "2024-01-14#service a", StatusUnavailable, t1)

	rec, ok := l.Get("m1", "2024-01-14#service a")
	if !ok {
		t.Fatal("record missing after submit")
	}
	if rec.Status != StatusUnavailable || !rec.UpdatedAt.Equal(t1) {
		t.Errorf("got %+v, want unavailable at t1", rec)
	}
	if len(l.All()) != 1 {
		t.Errorf("resubmission grew the ledger: %d records", len(l.All()))
	}
}

func TestLedgerMergeFreshness(t *testing.T) {
	tests := []struct {
		name            string
		localAt         time.Time
		remoteAt        time.Time
		instanceTouched time.Time
		wantApplied     bool
	}{
		{"older remote record retained local", t2, t1, time.Time{}, false},
		{"equal timestamps keep local", t1, t1, time.Time{}, false},
		{"newer remote record applied", t1, t2, time.Time{}, true},
		{"remote older than instance reconfiguration rejected", t0, t1, t2, false},
		{"remote newer than both applied", t0, t2, t1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger()
			l.Submit("m1", "ev", StatusAvailable, tt.localAt)

			applied := l.Merge(AvailabilityRecord{
				MemberID:       "m1",
				EventLogicalID: "ev",
				Status:         StatusUnavailable,
				UpdatedAt:      tt.remoteAt,
			}, tt.instanceTouched)

			if applied != tt.wantApplied {
				t.Fatalf("applied = %v, want %v", applied, tt.wantApplied)
			}
			rec, _ := l.Get("m1", "ev")
			if tt.wantApplied && rec.Status != StatusUnavailable {
				t.Errorf("record not overwritten: %+v", rec)
			}
			if !tt.wantApplied && rec.Status != StatusAvailable {
				t.Errorf("local record clobbered: %+v", rec)
			}
		})
	}
}

func TestLedgerMergeIntoEmptyPair(t *testing.T) {
	l := NewLedger()
	if !l.Merge(AvailabilityRecord{MemberID: "m1", EventLogicalID: "ev", Status: StatusAvailable, UpdatedAt: t1}, time.Time{}) {
		t.Error("merge into empty pair should apply")
	}

	// Instance reconfigured after the remote row was written: reject even
	// with no local record, the response targeted the old event shape.
	l2 := NewLedger()
	if l2.Merge(AvailabilityRecord{MemberID: "m1", EventLogicalID: "ev", Status: StatusAvailable, UpdatedAt: t1}, t2) {
		t.Error("merge older than instance modification should be rejected")
	}
}

func TestLedgerVersionBumpsOnWrites(t *testing.T) {
	l := NewLedger()
	v0 := l.Version()
	l.Submit("m1", "ev", StatusAvailable, t0)
	if l.Version() == v0 {
		t.Error("version unchanged after submit")
	}
	v1 := l.Version()
	l.Merge(AvailabilityRecord{MemberID: "m1", EventLogicalID: "ev", Status: StatusUnavailable, UpdatedAt: t0}, time.Time{})
	if l.Version() != v1 {
		t.Error("rejected merge must not bump version")
	}
}

func TestLedgerForMember(t *testing.T) {
	l := NewLedger()
	l.Submit("m1", "ev1", StatusAvailable, t0)
	l.Submit("m1", "ev2", StatusUnavailable, t0)
	l.Submit("m2", "ev1", StatusAvailable, t0)

	if got := len(l.ForMember("m1")); got != 2 {
		t.Errorf("ForMember(m1) = %d records, want 2", got)
	}
	if got := len(l.ForMember("m3")); got != 0 {
		t.Errorf("ForMember(m3) = %d records, want 0", got)
	}
}
