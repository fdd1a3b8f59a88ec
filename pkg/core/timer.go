package core

import (
	"time"

	"github.com/google/uuid"
)

// Timer is a single pending deadline. Timers are immutable once created;
// rescheduling is modeled as remove + create, never mutation.
type Timer struct {
	// ID uniquely identifies the timer. Ids are random and never reused.
	ID uuid.UUID

	// ExpiresAt is the absolute deadline in milliseconds since the Unix epoch.
	ExpiresAt int64
}

// NewTimer creates a timer with a fresh id for the given deadline.
func NewTimer(expiresAt int64) Timer {
	return Timer{
		ID:        uuid.New(),
		ExpiresAt: expiresAt,
	}
}

// Expired reports whether the deadline has passed at the given time.
func (t Timer) Expired(nowMillis int64) bool {
	return nowMillis >= t.ExpiresAt
}

// TimeLeft returns the milliseconds remaining until the deadline, clamped to zero.
func (t Timer) TimeLeft(nowMillis int64) int64 {
	if t.ExpiresAt > nowMillis {
		return t.ExpiresAt - nowMillis
	}
	return 0
}

// TimerInfo is a timer joined with its payload for introspection.
// TimeLeft is computed at snapshot time; a zero TimeLeft means the timer is
// due but not yet dispatched.
type TimerInfo struct {
	ID        uuid.UUID
	ExpiresAt int64
	Payload   string
	TimeLeft  int64
}

// NowMillis returns the current wall-clock time in milliseconds since the Unix epoch.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
