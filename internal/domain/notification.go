package domain

import "time"

// Notification records that an owner was (or is about to be) alerted that a
// TrackedSearch became available. Exactly zero or one exists per search; the
// search ID is the dedup key. A row with a nil NotifiedAt is an attempt that
// has not yet been delivered and will be retried by later sweeps.
type Notification struct {
	SearchID   string     `json:"search_id"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}

// Delivered returns true once the email has actually gone out.
func (n *Notification) Delivered() bool {
	return n.NotifiedAt != nil
}
