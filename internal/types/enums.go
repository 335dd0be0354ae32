package types

// Availability response values
const (
	AvailabilityAvailable   = "available"
	AvailabilityUnavailable = "unavailable"
)

// Event instance origin values
const (
	OriginPattern = "pattern"
	OriginAdhoc   = "adhoc"
)

// Remote event row status values
const (
	EventActive    = "active"
	EventCancelled = "cancelled"
)

// Team member roles
const (
	RoleLeader = "leader"
	RoleMember = "member"
)

// Valid availability values for validation
var ValidAvailabilityStatuses = []string{
	AvailabilityAvailable, AvailabilityUnavailable,
}

// IsValidAvailability reports whether s is an accepted availability response.
func IsValidAvailability(s string) bool {
	for _, v := range ValidAvailabilityStatuses {
		if s == v {
			return true
		}
	}
	return false
}
