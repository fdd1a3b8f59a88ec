package oplog

import (
	"github.com/google/uuid"

	"github.com/jdziat/durable-timers/pkg/core"
)

// Op tags the kind of a log record.
type Op string

const (
	// OpSet records a timer registration.
	OpSet Op = "SetTimer"

	// OpRemove records a timer cancellation or expiration.
	OpRemove Op = "RemoveTimer"
)

// Record is one immutable, timestamped fact in the operation log. ExpiresAt
// and Payload are only meaningful for OpSet records.
type Record struct {
	Timestamp int64     `json:"timestamp"`
	Op        Op        `json:"op"`
	TimerID   uuid.UUID `json:"timer_id"`
	ExpiresAt int64     `json:"expires_at,omitempty"`
	Payload   string    `json:"payload,omitempty"`
}

// SetRecord builds the log record for registering a timer.
func SetRecord(t core.Timer, payload string) Record {
	return Record{
		Timestamp: core.NowMillis(),
		Op:        OpSet,
		TimerID:   t.ID,
		ExpiresAt: t.ExpiresAt,
		Payload:   payload,
	}
}

// RemoveRecord builds the log record for removing a timer, whether by
// explicit cancellation or by expiration.
func RemoveRecord(id uuid.UUID) Record {
	return Record{
		Timestamp: core.NowMillis(),
		Op:        OpRemove,
		TimerID:   id,
	}
}
