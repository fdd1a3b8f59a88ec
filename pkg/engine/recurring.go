package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/jdziat/durable-timers/pkg/schedule"
)

// recurringEntry tracks the recurrence rule for the currently armed
// occurrence of a recurring timer.
type recurringEntry struct {
	schedule schedule.Schedule
	payload  string
}

// SetRecurring durably registers a timer for the schedule's next occurrence
// and re-arms a fresh occurrence each time one fires. Every occurrence is an
// independent one-shot timer with its own id; the returned id identifies the
// first occurrence. Removing the currently armed occurrence cancels the
// series.
//
// The recurrence registry is in-memory only: after a restart the recovered
// occurrence fires once, and callers re-register the schedule.
func (e *Engine) SetRecurring(s schedule.Schedule, payload string) (uuid.UUID, error) {
	next := s.Next(time.Now())
	id, err := e.SetAt(next.UnixMilli(), payload)
	if err != nil {
		return uuid.Nil, err
	}

	e.mu.Lock()
	e.recurring[id] = recurringEntry{schedule: s, payload: payload}
	e.mu.Unlock()

	return id, nil
}

// rearmRecurring registers the next occurrence after a recurring timer fires.
// Runs on the dispatcher goroutine with no locks held across the SetAt.
func (e *Engine) rearmRecurring(fired uuid.UUID) {
	e.mu.Lock()
	entry, ok := e.recurring[fired]
	if ok {
		delete(e.recurring, fired)
	}
	e.mu.Unlock()
	if !ok {
		return
	}

	next := entry.schedule.Next(time.Now())
	id, err := e.SetAt(next.UnixMilli(), entry.payload)
	if err != nil {
		e.logger.Error("failed to re-arm recurring timer",
			"fired_id", fired,
			"error", err,
		)
		return
	}

	e.mu.Lock()
	e.recurring[id] = recurringEntry{schedule: entry.schedule, payload: entry.payload}
	e.mu.Unlock()
}

// dropRecurring forgets the recurrence rule for an explicitly removed timer.
func (e *Engine) dropRecurring(id uuid.UUID) {
	e.mu.Lock()
	delete(e.recurring, id)
	e.mu.Unlock()
}
