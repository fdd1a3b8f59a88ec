package core

import (
	"time"

	"github.com/google/uuid"
)

// Event is the interface for all engine events.
type Event interface {
	eventMarker()
}

// TimerSet is emitted when a timer is durably registered.
type TimerSet struct {
	Timer     Timer
	Timestamp time.Time
}

func (*TimerSet) eventMarker() {}

// TimerFired is emitted when a due timer is dispatched.
type TimerFired struct {
	Timer     Timer
	Payload   string
	Timestamp time.Time
}

func (*TimerFired) eventMarker() {}

// TimerRemoved is emitted when a timer is explicitly cancelled.
type TimerRemoved struct {
	ID        uuid.UUID
	Payload   string
	Timestamp time.Time
}

func (*TimerRemoved) eventMarker() {}

// RecoveryCompleted is emitted once after the operation log has been replayed.
type RecoveryCompleted struct {
	Entries   int
	Active    int
	Timestamp time.Time
}

func (*RecoveryCompleted) eventMarker() {}
