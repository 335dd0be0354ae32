package roster

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the wire format for service dates throughout the engine.
const DateLayout = "2006-01-02"

// Origin tells whether an instance came from the pattern catalog or from a
// remotely stored one-off event.
type Origin string

const (
	OriginPattern Origin = "pattern"
	OriginAdhoc   Origin = "adhoc"
)

// EventInstance is one concrete dated occurrence of an event. Instances are
// rebuilt from scratch on every resolution pass and never mutated after
// construction within a pass.
type EventInstance struct {
	LogicalID       string
	Date            string
	DisplayName     string
	Time            *string // "15:04", nil when the event has no scheduled time
	Origin          Origin
	SourcePatternID string // set for pattern-derived instances
	RemoteID        string // set when a remote event row backs this instance

	// RemoteUpdatedAt is the last remote modification time of the backing
	// event row, zero when the instance has no remote counterpart. It feeds
	// the freshness check on availability merges.
	RemoteUpdatedAt time.Time
}

// leadingDateToken matches the "M/D " prefix remote event names carry,
// e.g. "1/14 Service A".
var leadingDateToken = regexp.MustCompile(`^\d{1,2}/\d{1,2}\s+`)

// NormalizeDisplayName strips a leading date token and surrounding
// whitespace so names from different origins compare as the same event.
func NormalizeDisplayName(name string) string {
	return strings.TrimSpace(leadingDateToken.ReplaceAllString(strings.TrimSpace(name), ""))
}

// LogicalID derives the deduplication key for an event: two instances with
// the same date and normalized name are the same logical event regardless
// of origin.
func LogicalID(date, displayName string) string {
	return date + "#" + strings.ToLower(NormalizeDisplayName(displayName))
}

// ParseDate parses a service date in DateLayout.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// DatesBetween returns every date from from to to inclusive.
func DatesBetween(from, to string) ([]string, error) {
	start, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return nil, err
	}
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}
