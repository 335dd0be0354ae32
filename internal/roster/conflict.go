package roster

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is a leader's placement of a member into a role for one
// logical event. Assignments are owned elsewhere; the detector consumes
// them read-only.
type Assignment struct {
	EventLogicalID string
	MemberID       string
	Role           string
	Date           string
}

// Conflict records that a member is assigned to an event they have
// declared themselves unavailable for. Conflicts are never deleted, only
// marked resolved, preserving audit history.
type Conflict struct {
	ID             string
	MemberID       string
	EventLogicalID string
	ServiceDate    string
	RoleName       string
	Resolved       bool
	ResolvedAt     *time.Time
	CreatedAt      time.Time
}

// PairState is the detector's view of one (member, event) pair.
type PairState string

const (
	PairUnassigned PairState = "unassigned"
	PairAssigned   PairState = "assigned"  // assigned, no response yet
	PairConfirmed  PairState = "confirmed" // assigned and available
	PairConflicted PairState = "conflicted"
	PairResolved   PairState = "resolved" // conflicted but acknowledged by a leader
)

// PairStateFor classifies a (member, event) pair from its assignment,
// latest availability record and open conflicts.
func PairStateFor(assigned bool, rec *AvailabilityRecord, conflicts []Conflict, memberID, eventLogicalID string) PairState {
	if !assigned {
		return PairUnassigned
	}
	if rec == nil {
		return PairAssigned
	}
	if rec.Status != StatusUnavailable {
		return PairConfirmed
	}
	for _, c := range conflicts {
		if c.MemberID != memberID || c.EventLogicalID != eventLogicalID {
			continue
		}
		if !c.Resolved {
			return PairConflicted
		}
		if c.ResolvedAt != nil && !rec.UpdatedAt.After(*c.ResolvedAt) {
			return PairResolved
		}
	}
	return PairConflicted
}

// DetectConflicts scans assignments against the ledger and returns the new
// conflicts the existing set does not yet cover. Detection is idempotent:
// a pair with an open conflict yields nothing, and a pair whose conflict
// was resolved yields a fresh conflict only when the member's unavailable
// response is newer than the resolution (the status flipped again).
func DetectConflicts(assignments []Assignment, ledger *Ledger, existing []Conflict, now time.Time) []Conflict {
	var detected []Conflict
	for _, a := range assignments {
		rec, ok := ledger.Get(a.MemberID, a.EventLogicalID)
		if !ok || rec.Status != StatusUnavailable {
			continue
		}
		if coveredByExisting(existing, detected, a, rec) {
			continue
		}
		detected = append(detected, Conflict{
			ID:             uuid.New().String(),
			MemberID:       a.MemberID,
			EventLogicalID: a.EventLogicalID,
			ServiceDate:    a.Date,
			RoleName:       a.Role,
			CreatedAt:      now,
		})
	}
	return detected
}

func coveredByExisting(existing, detected []Conflict, a Assignment, rec AvailabilityRecord) bool {
	for _, set := range [][]Conflict{existing, detected} {
		for _, c := range set {
			if c.MemberID != a.MemberID || c.EventLogicalID != a.EventLogicalID {
				continue
			}
			if !c.Resolved {
				return true
			}
			if c.ResolvedAt != nil && !rec.UpdatedAt.After(*c.ResolvedAt) {
				return true
			}
		}
	}
	return false
}
