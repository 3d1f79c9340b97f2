package types

import "time"

// EventSnapshot is the decoded field set of a calendar event write. Events
// are mutated by the calendar surface; this service only sees snapshots
// delivered through change notifications.
type EventSnapshot struct {
	Title     string
	CourseID  string
	StartTime time.Time
}

// EventChange is the outcome of decoding one change notification payload.
// Deleted means the write carried no field content.
type EventChange struct {
	Deleted bool
	Event   *EventSnapshot
}
