package roster

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RawInstance is an event row as fetched from the remote store, before any
// normalization or deduplication.
type RawInstance struct {
	ID        string
	Date      string
	Name      string
	Time      *string
	Status    string
	UpdatedAt time.Time
}

// rawInstanceCancelled matches the remote row status that marks a one-off
// event as withdrawn.
const rawInstanceCancelled = "cancelled"

// ResolveWarning flags a remote row the resolver dropped because its name
// collides with a catalog pattern on a weekday the pattern is not
// configured for. The row is excluded from the canonical list (catalog
// authority wins over remote noise), but surfaced so leaders can audit
// possible misconfigurations.
type ResolveWarning struct {
	Date        string
	Name        string
	PatternName string
}

// ResolveResult is the canonical per-date instance list for a window plus
// any data-quality warnings gathered along the way.
type ResolveResult struct {
	ByDate   map[string][]EventInstance
	Warnings []ResolveWarning
}

// Instances returns the resolved instances for one date.
func (r ResolveResult) Instances(date string) []EventInstance {
	return r.ByDate[date]
}

// Lookup finds a resolved instance by logical ID.
func (r ResolveResult) Lookup(logicalID string) (EventInstance, bool) {
	for _, instances := range r.ByDate {
		for _, inst := range instances {
			if inst.LogicalID == logicalID {
				return inst, true
			}
		}
	}
	return EventInstance{}, false
}

// Resolve produces the deduplicated, per-date canonical instance list for
// [from, to] by expanding the catalog against calendar weekdays and merging
// in remote rows. Malformed remote rows are dropped, never propagated as
// errors; only an invalid date range fails the pass.
func Resolve(catalog *Catalog, from, to string, raw []RawInstance) (ResolveResult, error) {
	result := ResolveResult{ByDate: make(map[string][]EventInstance)}

	dates, err := DatesBetween(from, to)
	if err != nil {
		return result, fmt.Errorf("resolve: invalid date range: %w", err)
	}

	for _, date := range dates {
		day, _ := ParseDate(date)
		var instances []EventInstance
		// One instance per logical ID: a catalog carrying two patterns with
		// the same normalized name expands once, first pattern wins.
		seen := make(map[string]bool)
		for _, p := range catalog.ByWeekday(day.Weekday()) {
			id := LogicalID(date, p.Name)
			if seen[id] {
				continue
			}
			seen[id] = true
			instances = append(instances, EventInstance{
				LogicalID:       id,
				Date:            date,
				DisplayName:     p.Name,
				Time:            p.DefaultTime,
				Origin:          OriginPattern,
				SourcePatternID: p.ID,
			})
		}
		for _, p := range catalog.Patterns() {
			if rehearsalOn(p, day) {
				name := p.Name + RehearsalSuffix
				id := LogicalID(date, name)
				if seen[id] {
					continue
				}
				seen[id] = true
				instances = append(instances, EventInstance{
					LogicalID:       id,
					Date:            date,
					DisplayName:     name,
					Time:            p.DefaultTime,
					Origin:          OriginPattern,
					SourcePatternID: p.ID,
				})
			}
		}
		if len(instances) > 0 {
			result.ByDate[date] = instances
		}
	}

	inWindow := make(map[string]bool, len(dates))
	for _, d := range dates {
		inWindow[d] = true
	}

	for _, row := range raw {
		if row.Name == "" || row.Date == "" {
			continue // malformed, best-effort drop
		}
		if strings.EqualFold(row.Status, rawInstanceCancelled) {
			continue
		}
		day, err := ParseDate(row.Date)
		if err != nil || !inWindow[row.Date] {
			continue
		}
		name := NormalizeDisplayName(row.Name)
		if name == "" {
			continue
		}

		// A row whose name matches a pattern configured for this weekday is
		// the regular event itself: already expanded, so only annotate the
		// pattern instance with its remote identity.
		if p, ok := catalog.Lookup(name); ok {
			if p.Weekday == day.Weekday() {
				annotateInstance(result.ByDate[row.Date], LogicalID(row.Date, name), row)
				continue
			}
			result.Warnings = append(result.Warnings, ResolveWarning{
				Date:        row.Date,
				Name:        row.Name,
				PatternName: p.Name,
			})
			continue
		}

		logicalID := LogicalID(row.Date, name)
		if containsLogicalID(result.ByDate[row.Date], logicalID) {
			annotateInstance(result.ByDate[row.Date], logicalID, row)
			continue
		}
		result.ByDate[row.Date] = append(result.ByDate[row.Date], EventInstance{
			LogicalID:       logicalID,
			Date:            row.Date,
			DisplayName:     name,
			Time:            row.Time,
			Origin:          OriginAdhoc,
			RemoteID:        row.ID,
			RemoteUpdatedAt: row.UpdatedAt,
		})
	}

	for date, instances := range result.ByDate {
		sortInstances(instances)
		result.ByDate[date] = instances
	}
	return result, nil
}

func containsLogicalID(instances []EventInstance, logicalID string) bool {
	for _, inst := range instances {
		if inst.LogicalID == logicalID {
			return true
		}
	}
	return false
}

// annotateInstance attaches remote identity to an already-resolved instance
// so later availability merges can weigh the row's modification time.
func annotateInstance(instances []EventInstance, logicalID string, row RawInstance) {
	for i := range instances {
		if instances[i].LogicalID != logicalID {
			continue
		}
		instances[i].RemoteID = row.ID
		if row.UpdatedAt.After(instances[i].RemoteUpdatedAt) {
			instances[i].RemoteUpdatedAt = row.UpdatedAt
		}
		if instances[i].Time == nil && row.Time != nil {
			instances[i].Time = row.Time
		}
		return
	}
}

// sortInstances orders a date's instances by time ascending with untimed
// instances last, breaking ties by display name for deterministic output.
func sortInstances(instances []EventInstance) {
	sort.SliceStable(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
		switch {
		case a.Time == nil && b.Time == nil:
			return a.DisplayName < b.DisplayName
		case a.Time == nil:
			return false
		case b.Time == nil:
			return true
		case *a.Time != *b.Time:
			return *a.Time < *b.Time
		default:
			return a.DisplayName < b.DisplayName
		}
	})
}
