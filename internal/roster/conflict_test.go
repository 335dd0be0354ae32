package roster

import (
	"testing"
	"time"
)

func TestDetectConflicts(t *testing.T) {
	date := "2024-01-14"
	eventID := LogicalID(date, "Service A")
	assignment := Assignment{EventLogicalID: eventID, MemberID: "m1", Role: "vocals", Date: date}
	now := time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC)

	t.Run("assigned and unavailable produces one conflict", func(t *testing.T) {
		l := NewLedger()
		l.Submit("m1", eventID, StatusUnavailable, now.Add(-time.Hour))

		detected := DetectConflicts([]Assignment{assignment}, l, nil, now)
		if len(detected) != 1 {
			t.Fatalf("got %d conflicts, want 1", len(detected))
		}
		c := detected[0]
		if c.Resolved || c.MemberID != "m1" || c.EventLogicalID != eventID || c.RoleName != "vocals" || c.ServiceDate != date {
			t.Errorf("unexpected conflict %+v", c)
		}
		if c.ID == "" {
			t.Error("conflict missing id")
		}
	})

	t.Run("available member produces nothing", func(t *testing.T) {
		l := NewLedger()
		l.Submit("m1", eventID, StatusAvailable, now)
		if got := DetectConflicts([]Assignment{assignment}, l, nil, now); len(got) != 0 {
			t.Errorf("got %d conflicts, want 0", len(got))
		}
	})

	t.Run("no response produces nothing", func(t *testing.T) {
		l := NewLedger()
		if got := DetectConflicts([]Assignment{assignment}, l, nil, now); len(got) != 0 {
			t.Errorf("got %d conflicts, want 0", len(got))
		}
	})

	t.Run("open conflict is not duplicated on rescan", func(t *testing.T) {
		l := NewLedger()
		l.Submit("m1", eventID, StatusUnavailable, now.Add(-time.Hour))
		first := DetectConflicts([]Assignment{assignment}, l, nil, now)
		second := DetectConflicts([]Assignment{assignment}, l, first, now.Add(time.Minute))
		if len(second) != 0 {
			t.Errorf("rescan duplicated open conflict: %+v", second)
		}
	})

	t.Run("same pair assigned twice yields one conflict per scan", func(t *testing.T) {
		l := NewLedger()
		l.Submit("m1", eventID, StatusUnavailable, now.Add(-time.Hour))
		double := []Assignment{assignment, {EventLogicalID: eventID, MemberID: "m1", Role: "keys", Date: date}}
		if got := DetectConflicts(double, l, nil, now); len(got) != 1 {
			t.Errorf("got %d conflicts, want 1", len(got))
		}
	})
}

// Resolving a conflict, then flipping the member's response to unavailable
// again after resolution, must produce a fresh unresolved conflict.
func TestConflictRedetectionAfterResolve(t *testing.T) {
	date := "2024-01-14"
	eventID := LogicalID(date, "Service A")
	assignment := Assignment{EventLogicalID: eventID, MemberID: "m1", Role: "vocals", Date: date}

	base := time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC)
	l := NewLedger()
	l.Submit("m1", eventID, StatusUnavailable, base)

	history := DetectConflicts([]Assignment{assignment}, l, nil, base.Add(time.Minute))
	if len(history) != 1 {
		t.Fatalf("initial detection: got %d conflicts, want 1", len(history))
	}

	// Leader resolves.
	resolvedAt := base.Add(time.Hour)
	history[0].Resolved = true
	history[0].ResolvedAt = &resolvedAt

	// Same unavailable response, already acknowledged: no new conflict.
	if got := DetectConflicts([]Assignment{assignment}, l, history, resolvedAt.Add(time.Minute)); len(got) != 0 {
		t.Errorf("acknowledged state re-detected: %+v", got)
	}

	// Member flips to available and then back to unavailable after the
	// resolution: a fresh conflict appears.
	l.Submit("m1", eventID, StatusAvailable, resolvedAt.Add(time.Hour))
	l.Submit("m1", eventID, StatusUnavailable, resolvedAt.Add(2*time.Hour))
	fresh := DetectConflicts([]Assignment{assignment}, l, history, resolvedAt.Add(3*time.Hour))
	if len(fresh) != 1 {
		t.Fatalf("flip after resolution: got %d conflicts, want 1", len(fresh))
	}
	if fresh[0].Resolved {
		t.Error("fresh conflict must be unresolved")
	}
	if fresh[0].ID == history[0].ID {
		t.Error("fresh conflict must be a new object, not the resolved one")
	}
}

func TestPairStateFor(t *testing.T) {
	eventID := "2024-01-14#service a"
	base := time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC)
	resolvedAt := base.Add(time.Hour)

	unavailable := &AvailabilityRecord{MemberID: "m1", EventLogicalID: eventID, Status: StatusUnavailable, UpdatedAt: base}
	available := &AvailabilityRecord{MemberID: "m1", EventLogicalID: eventID, Status: StatusAvailable, UpdatedAt: base}
	flipped := &AvailabilityRecord{MemberID: "m1", EventLogicalID: eventID, Status: StatusUnavailable, UpdatedAt: resolvedAt.Add(time.Hour)}

	open := []Conflict{{ID: "c1", MemberID: "m1", EventLogicalID: eventID}}
	acked := []Conflict{{ID: "c1", MemberID: "m1", EventLogicalID: eventID, Resolved: true, ResolvedAt: &resolvedAt}}

	tests := []struct {
		name      string
		assigned  bool
		rec       *AvailabilityRecord
		conflicts []Conflict
		want      PairState
	}{
		{"not assigned", false, unavailable, nil, PairUnassigned},
		{"assigned without response", true, nil, nil, PairAssigned},
		{"assigned and available", true, available, nil, PairConfirmed},
		{"assigned and unavailable", true, unavailable, nil, PairConflicted},
		{"open conflict", true, unavailable, open, PairConflicted},
		{"acknowledged conflict", true, unavailable, acked, PairResolved},
		{"flipped after acknowledgment", true, flipped, acked, PairConflicted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PairStateFor(tt.assigned, tt.rec, tt.conflicts, "m1", eventID)
			if got != tt.want {
				t.Errorf("PairStateFor = %q, want %q", got, tt.want)
			}
		})
	}
}
