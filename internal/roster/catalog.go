package roster

import (
	"log"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// EventPattern is a recurring event template keyed by weekday. Patterns are
// owned by the team configuration and replaced wholesale, never edited
// mid-cycle, so the catalog treats them as immutable.
type EventPattern struct {
	ID          string
	Name        string
	Weekday     time.Weekday
	DefaultTime *string // "15:04", nil when the pattern has no fixed time

	// RehearsalRule is an optional RRULE string; when it yields an
	// occurrence on a resolved date, the pattern contributes a rehearsal
	// instance on that date in addition to its weekday instances.
	RehearsalRule *string
}

// RehearsalSuffix is appended to a pattern name to form the display name of
// a rehearsal instance.
const RehearsalSuffix = " Rehearsal"

// Catalog holds a team's recurring event definitions and answers weekday
// and name lookups for the resolver.
type Catalog struct {
	patterns []EventPattern
	byName   map[string]EventPattern
}

// NewCatalog builds a catalog from a team's patterns. Later patterns with a
// duplicate normalized name shadow earlier ones in name lookups.
func NewCatalog(patterns []EventPattern) *Catalog {
	c := &Catalog{
		patterns: append([]EventPattern(nil), patterns...),
		byName:   make(map[string]EventPattern, len(patterns)),
	}
	for _, p := range patterns {
		c.byName[strings.ToLower(NormalizeDisplayName(p.Name))] = p
	}
	return c
}

// Patterns returns the catalog contents in configuration order.
func (c *Catalog) Patterns() []EventPattern {
	return append([]EventPattern(nil), c.patterns...)
}

// ByWeekday returns the patterns configured for the given weekday, in
// configuration order.
func (c *Catalog) ByWeekday(w time.Weekday) []EventPattern {
	var out []EventPattern
	for _, p := range c.patterns {
		if p.Weekday == w {
			out = append(out, p)
		}
	}
	return out
}

// Lookup finds a pattern by normalized display name.
func (c *Catalog) Lookup(name string) (EventPattern, bool) {
	p, ok := c.byName[strings.ToLower(NormalizeDisplayName(name))]
	return p, ok
}

// HasName reports whether any pattern shares the given normalized name,
// regardless of weekday. The resolver uses this to spot remote rows that
// collide with the catalog on the wrong weekday.
func (c *Catalog) HasName(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// rehearsalOn reports whether the pattern's rehearsal rule fires on the
// given date. Unparseable rules are treated as absent and logged once per
// resolution pass by the caller's best-effort contract.
func rehearsalOn(p EventPattern, date time.Time) bool {
	if p.RehearsalRule == nil || *p.RehearsalRule == "" {
		return false
	}
	opt, err := rrule.StrToROption(*p.RehearsalRule)
	if err != nil {
		log.Printf("[Catalog] Ignoring malformed rehearsal rule for pattern %q: %v", p.Name, err)
		return false
	}
	if opt.Dtstart.IsZero() {
		// Anchor open-ended rules well before any window we resolve.
		opt.Dtstart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		log.Printf("[Catalog] Ignoring malformed rehearsal rule for pattern %q: %v", p.Name, err)
		return false
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)
	return len(r.Between(dayStart, dayEnd, true)) > 0
}
