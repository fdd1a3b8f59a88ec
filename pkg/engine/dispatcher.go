package engine

import (
	"time"

	"github.com/jdziat/durable-timers/pkg/core"
	"github.com/jdziat/durable-timers/pkg/history"
	"github.com/jdziat/durable-timers/pkg/oplog"
)

// recoveryCheckInterval is how often the dispatcher re-checks the recovery
// flag before entering its polling loop.
const recoveryCheckInterval = 10 * time.Millisecond

// dispatchLoop is the expiration dispatcher. One goroutine per engine, started
// by Open after replay completes and stopped by Close.
func (e *Engine) dispatchLoop() {
	defer e.wg.Done()

	// Replay must finish before any timer is dispatched.
	for !e.recovered.Load() {
		select {
		case <-e.done:
			return
		case <-time.After(recoveryCheckInterval):
		}
	}
	e.logger.Debug("expiration dispatcher started")

	for {
		next, ok := e.queue.Peek()
		if !ok {
			if !e.sleep(e.pollInterval) {
				return
			}
			continue
		}

		now := core.NowMillis()
		if next.Expired(now) {
			e.dispatch(next)
			continue
		}

		// Sleep the exact remaining time, but re-peek on every wake: a
		// sooner timer may have been inserted or this one cancelled.
		if !e.sleep(time.Duration(next.TimeLeft(now)) * time.Millisecond) {
			return
		}
	}
}

// sleep blocks until the duration elapses, a set/remove signals the wake
// channel, or the engine closes. Returns false when the engine is closing.
func (e *Engine) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-e.done:
		return false
	case <-e.wake:
		return true
	case <-timer.C:
		return true
	}
}

// dispatch durably removes a due timer and delivers its payload. The removal
// is logged before any in-memory state changes; the callback runs with no
// engine locks held.
func (e *Engine) dispatch(t core.Timer) {
	if err := e.log.Append(oplog.RemoveRecord(t.ID)); err != nil {
		// Leave the timer queued and retry after a poll interval; the
		// log-first discipline is never violated.
		e.logger.Error("failed to log timer expiration",
			"timer_id", t.ID,
			"error", err,
		)
		e.sleep(e.pollInterval)
		return
	}

	if _, ok := e.queue.Remove(t.ID); !ok {
		// Lost the race with an explicit Remove; the timer is already gone
		// and its payload was returned to that caller.
		return
	}
	payload, _ := e.store.Take(t.ID)

	e.rearmRecurring(t.ID)

	e.mu.RLock()
	hooks := e.onFire
	callback := e.callback
	e.mu.RUnlock()

	for _, fn := range hooks {
		fn(t.ID, payload)
	}
	e.emit(&core.TimerFired{Timer: t, Payload: payload, Timestamp: time.Now()})
	e.record(t.ID, t.ExpiresAt, payload, history.OutcomeFired)

	if callback != nil {
		callback.Invoke(t.ID, payload)
	}
}
