package socket

import "fmt"

// Broadcaster provides high-level methods for broadcasting roster events
// to team rooms. It is the explicit event channel UI clients subscribe to
// instead of polling.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func teamRoom(teamID string) string {
	return fmt.Sprintf("team:%s", teamID)
}

// ============================================
// Availability Broadcasting
// ============================================

// BroadcastAvailabilitySubmitted tells a team room a member responded. The
// submitting member is excluded; their own UI already shows the optimistic
// local state.
func (b *Broadcaster) BroadcastAvailabilitySubmitted(teamID, memberID, eventLogicalID, status string) {
	b.hub.SendToRoom(teamRoom(teamID), MessageAvailabilitySubmitted, map[string]interface{}{
		"memberId": memberID,
		"eventId":  eventLogicalID,
		"status":   status,
	}, memberID)
}

// BroadcastSyncCompleted announces that a remote availability sync finished
// for a date range.
func (b *Broadcaster) BroadcastSyncCompleted(teamID, from, to string) {
	b.hub.SendToRoom(teamRoom(teamID), MessageSyncCompleted, map[string]interface{}{
		"from": from,
		"to":   to,
	}, "")
}

// ============================================
// Conflict Broadcasting
// ============================================

// BroadcastConflictDetected pushes a fresh conflict to the team room.
func (b *Broadcaster) BroadcastConflictDetected(teamID string, conflict map[string]interface{}) {
	b.hub.SendToRoom(teamRoom(teamID), MessageConflictDetected, conflict, "")
}

// BroadcastConflictResolved announces a leader's acknowledgment.
func (b *Broadcaster) BroadcastConflictResolved(teamID, conflictID string) {
	b.hub.SendToRoom(teamRoom(teamID), MessageConflictResolved, map[string]interface{}{
		"conflictId": conflictID,
	}, "")
}

// ============================================
// Catalog Broadcasting
// ============================================

// BroadcastPatternsReplaced tells clients to drop any cached roster state.
func (b *Broadcaster) BroadcastPatternsReplaced(teamID string, count int) {
	b.hub.SendToRoom(teamRoom(teamID), MessagePatternsReplaced, map[string]interface{}{
		"patternCount": count,
	}, "")
}

// BroadcastEventCreated announces a new ad-hoc event.
func (b *Broadcaster) BroadcastEventCreated(teamID string, event map[string]interface{}) {
	b.hub.SendToRoom(teamRoom(teamID), MessageEventCreated, event, "")
}

// BroadcastEventCancelled announces a withdrawn ad-hoc event.
func (b *Broadcaster) BroadcastEventCancelled(teamID, eventID string) {
	b.hub.SendToRoom(teamRoom(teamID), MessageEventCancelled, map[string]interface{}{
		"eventId": eventID,
	}, "")
}

// BroadcastAssignmentCreated announces a leader's assignment.
func (b *Broadcaster) BroadcastAssignmentCreated(teamID string, assignment map[string]interface{}) {
	b.hub.SendToRoom(teamRoom(teamID), MessageAssignmentCreated, assignment, "")
}
