// Package entity holds the fields every persisted record shares.
package entity

import "time"

// HasID is implemented by entities keyed by an identifier of type K.
// Loaders use it to match batched results back to requested keys.
type HasID[K comparable] interface {
	GetID() K
}

// Timestamps contains the audit fields common to all entities.
// CreatedAt is fixed at construction; UpdatedAt moves on every Touch.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewTimestamps stamps both fields with the current UTC time.
func NewTimestamps() Timestamps {
	now := Now()
	return Timestamps{CreatedAt: now, UpdatedAt: now}
}

// Touch refreshes the modification timestamp.
func (t *Timestamps) Touch() {
	now := Now()
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Microsecond)
	}
	t.UpdatedAt = now
}

// Now returns the current time truncated to the precision PostgreSQL stores (microseconds),
// so a value survives a round-trip through timestamptz unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
