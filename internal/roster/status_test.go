package roster

import (
	"testing"
	"time"
)

func instancesFor(date string, names ...string) []EventInstance {
	var out []EventInstance
	for _, n := range names {
		out = append(out, EventInstance{
			LogicalID:   LogicalID(date, n),
			Date:        date,
			DisplayName: n,
			Origin:      OriginPattern,
		})
	}
	return out
}

func recordFor(date, name, status string) AvailabilityRecord {
	return AvailabilityRecord{
		MemberID:       "m1",
		EventLogicalID: LogicalID(date, name),
		Status:         status,
		UpdatedAt:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestComputeDayStatus(t *testing.T) {
	date := "2024-01-14"
	two := instancesFor(date, "Service A", "Service B")

	tests := []struct {
		name      string
		instances []EventInstance
		records   []AvailabilityRecord
		want      func(DayStatus) bool
		desc      string
	}{
		{
			name:      "no service is not started",
			instances: nil,
			records:   nil,
			want:      func(s DayStatus) bool { return s.NotStarted && !s.HasService && !s.Complete },
		},
		{
			name:      "no service ignores stray records",
			instances: nil,
			records:   []AvailabilityRecord{recordFor(date, "Ghost Event", StatusAvailable)},
			want:      func(s DayStatus) bool { return s.NotStarted && !s.Complete && s.Responded == 0 },
		},
		{
			name:      "service with no responses is not started",
			instances: two,
			records:   nil,
			want:      func(s DayStatus) bool { return s.NotStarted && s.HasService && s.Total == 2 },
		},
		{
			name:      "partial responses are in progress",
			instances: two,
			records:   []AvailabilityRecord{recordFor(date, "Service A", StatusAvailable)},
			want: func(s DayStatus) bool {
				return s.InProgress && !s.Complete && s.Responded == 1 && s.Total == 2
			},
		},
		{
			name:      "all responses available is complete available",
			instances: two,
			records: []AvailabilityRecord{
				recordFor(date, "Service A", StatusAvailable),
				recordFor(date, "Service B", StatusAvailable),
			},
			want: func(s DayStatus) bool { return s.Complete && s.Available && !s.Unavailable },
		},
		{
			name:      "any unavailable response is complete unavailable",
			instances: two,
			records: []AvailabilityRecord{
				recordFor(date, "Service A", StatusAvailable),
				recordFor(date, "Service B", StatusUnavailable),
			},
			want: func(s DayStatus) bool { return s.Complete && s.Unavailable && !s.Available },
		},
		{
			name:      "orphaned record does not count toward completion",
			instances: two,
			records: []AvailabilityRecord{
				recordFor(date, "Service A", StatusAvailable),
				recordFor(date, "Removed Event", StatusAvailable),
			},
			want: func(s DayStatus) bool { return s.InProgress && s.Responded == 1 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDayStatus(date, tt.instances, tt.records)
			if !tt.want(got) {
				t.Errorf("unexpected status %+v", got)
			}
			assertMutuallyExclusive(t, got)
		})
	}
}

func assertMutuallyExclusive(t *testing.T, s DayStatus) {
	t.Helper()
	states := 0
	for _, b := range []bool{s.NotStarted, s.InProgress, s.Available, s.Unavailable} {
		if b {
			states++
		}
	}
	if states != 1 {
		t.Errorf("status booleans not mutually exclusive: %+v", s)
	}
	if s.Complete != (s.Available || s.Unavailable) {
		t.Errorf("Complete must accompany exactly the terminal states: %+v", s)
	}
}

// Adding records for a fixed instance set only moves status forward:
// not-started, in-progress, complete, never backward.
func TestStatusMonotonicity(t *testing.T) {
	date := "2024-01-14"
	instances := instancesFor(date, "Service A", "Service B", "Service C")

	rank := func(s DayStatus) int {
		switch {
		case s.NotStarted:
			return 0
		case s.InProgress:
			return 1
		default:
			return 2
		}
	}

	var records []AvailabilityRecord
	prev := ComputeDayStatus(date, instances, records)
	for _, name := range []string{"Service A", "Service B", "Service C"} {
		records = append(records, recordFor(date, name, StatusAvailable))
		next := ComputeDayStatus(date, instances, records)
		if rank(next) < rank(prev) {
			t.Fatalf("status regressed from %+v to %+v after adding a record", prev, next)
		}
		prev = next
	}
	if !prev.Complete {
		t.Errorf("full response set should be complete: %+v", prev)
	}
}

// A date can never be complete with zero resolved instances.
func TestNeverCompleteWithoutInstances(t *testing.T) {
	date := "2024-01-14"
	records := []AvailabilityRecord{
		recordFor(date, "Service A", StatusAvailable),
		recordFor(date, "Service B", StatusAvailable),
	}
	got := ComputeDayStatus(date, nil, records)
	if got.Complete || !got.NotStarted {
		t.Errorf("zero-instance date reported %+v", got)
	}
}
