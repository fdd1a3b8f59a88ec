package history

import (
	"context"
	"time"
)

// Outcome describes how a timer left the system.
type Outcome string

const (
	// OutcomeFired means the dispatcher delivered the timer at its deadline.
	OutcomeFired Outcome = "fired"

	// OutcomeCancelled means the timer was explicitly removed before firing.
	OutcomeCancelled Outcome = "cancelled"
)

// Entry is one archived timer outcome.
type Entry struct {
	ID         string    `gorm:"primaryKey;size:36"`
	TimerID    string    `gorm:"index;size:36;not null"`
	ExpiresAt  int64     `gorm:"index"`
	Payload    string    `gorm:"type:text"`
	Outcome    Outcome   `gorm:"index;size:20;not null"`
	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// History archives timer outcomes. Implementations must be safe for
// concurrent use; the engine records entries from the dispatcher goroutine
// and from caller goroutines performing explicit removals.
type History interface {
	// Migrate creates the necessary tables.
	Migrate(ctx context.Context) error

	// Record archives one timer outcome.
	Record(ctx context.Context, e *Entry) error

	// Recent returns the most recently archived entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// CountByOutcome returns how many entries share the given outcome.
	CountByOutcome(ctx context.Context, o Outcome) (int64, error)
}
