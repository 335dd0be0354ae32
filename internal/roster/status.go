package roster

// DayStatus is the aggregate completion state for one date, computed purely
// from the resolved instance set and the availability records that
// reference it. Exactly one of NotStarted, InProgress, Available and
// Unavailable is true; Complete accompanies the latter two.
type DayStatus struct {
	Date       string
	HasService bool
	Total      int
	Responded  int

	NotStarted  bool
	InProgress  bool
	Complete    bool
	Available   bool // complete and every counted response is "available"
	Unavailable bool // complete and at least one counted response is "unavailable"
}

// ComputeDayStatus cross-references a date's resolved instances with a set
// of availability records. Records referencing an instance outside the
// resolved set are orphaned and ignored, so a date with no service is
// always not-started no matter what stray records exist.
func ComputeDayStatus(date string, instances []EventInstance, records []AvailabilityRecord) DayStatus {
	status := DayStatus{
		Date:       date,
		HasService: len(instances) > 0,
		Total:      len(instances),
	}

	resolved := make(map[string]bool, len(instances))
	for _, inst := range instances {
		resolved[inst.LogicalID] = true
	}

	answered := make(map[string]bool, len(records))
	anyUnavailable := false
	for _, rec := range records {
		if !resolved[rec.EventLogicalID] {
			continue // orphaned
		}
		answered[rec.EventLogicalID] = true
		if rec.Status == StatusUnavailable {
			anyUnavailable = true
		}
	}
	status.Responded = len(answered)

	switch {
	case !status.HasService, status.Responded == 0:
		status.NotStarted = true
	case status.Responded < status.Total:
		status.InProgress = true
	default:
		status.Complete = true
		if anyUnavailable {
			status.Unavailable = true
		} else {
			status.Available = true
		}
	}
	return status
}
