package roster

import "time"

// Availability response values understood by the ledger.
const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// AvailabilityRecord is one member's answer for one logical event. The
// (member, event) pair is the natural key; a newer submission for the same
// pair overwrites the prior one.
type AvailabilityRecord struct {
	MemberID       string
	EventLogicalID string
	Status         string
	UpdatedAt      time.Time
}

type ledgerKey struct {
	memberID string
	eventID  string
}

// Ledger holds the authoritative set of availability responses for a
// session. Local submissions always win immediately; remote records merge
// in only when they pass the freshness check. The ledger itself is not
// goroutine safe; the owning session serializes access.
type Ledger struct {
	records map[ledgerKey]AvailabilityRecord
	version uint64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{records: make(map[ledgerKey]AvailabilityRecord)}
}

// Version increments on every accepted write, letting the status engine
// memoize against ledger state.
func (l *Ledger) Version() uint64 {
	return l.version
}

// Submit records a local response, overwriting any record for the same
// (member, event) pair. Local writes are authoritative and never rejected.
func (l *Ledger) Submit(memberID, eventLogicalID, status string, at time.Time) AvailabilityRecord {
	rec := AvailabilityRecord{
		MemberID:       memberID,
		EventLogicalID: eventLogicalID,
		Status:         status,
		UpdatedAt:      at,
	}
	l.records[ledgerKey{memberID, eventLogicalID}] = rec
	l.version++
	return rec
}

// Merge applies a remote record only when it is strictly newer than both
// the local record for the same pair and the remote modification time of
// the instance it targets. The second guard keeps a stale server pull from
// clobbering a response made against a newly reconfigured event. Returns
// whether the record was applied.
func (l *Ledger) Merge(rec AvailabilityRecord, instanceTouched time.Time) bool {
	key := ledgerKey{rec.MemberID, rec.EventLogicalID}
	if existing, ok := l.records[key]; ok && !rec.UpdatedAt.After(existing.UpdatedAt) {
		return false
	}
	if !instanceTouched.IsZero() && !rec.UpdatedAt.After(instanceTouched) {
		return false
	}
	l.records[key] = rec
	l.version++
	return true
}

// Get returns the record for a (member, event) pair.
func (l *Ledger) Get(memberID, eventLogicalID string) (AvailabilityRecord, bool) {
	rec, ok := l.records[ledgerKey{memberID, eventLogicalID}]
	return rec, ok
}

// ForMember returns all of a member's records, in no particular order.
func (l *Ledger) ForMember(memberID string) []AvailabilityRecord {
	var out []AvailabilityRecord
	for key, rec := range l.records {
		if key.memberID == memberID {
			out = append(out, rec)
		}
	}
	return out
}

// All returns every record in the ledger, in no particular order.
func (l *Ledger) All() []AvailabilityRecord {
	out := make([]AvailabilityRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, rec)
	}
	return out
}
