package oplog

import (
	"log/slog"

	"github.com/jdziat/durable-timers/pkg/core"
	"github.com/jdziat/durable-timers/pkg/timerqueue"
)

// RecoveryManager replays an operation log into a fresh timer queue and
// payload store. Replay runs exactly once, before any concurrent mutation
// is allowed; the dispatcher must not start until it completes.
type RecoveryManager struct {
	log    *OpLog
	logger *slog.Logger
}

// NewRecoveryManager creates a recovery manager for the given log.
func NewRecoveryManager(l *OpLog, logger *slog.Logger) *RecoveryManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecoveryManager{log: l, logger: logger}
}

// Replay reads all records in append order and applies them. A RemoveTimer
// for an id never set is a harmless no-op; a SetTimer following an earlier
// RemoveTimer of the same id is a fresh, independent timer. Returns the
// number of records processed.
func (r *RecoveryManager) Replay(queue *timerqueue.Queue, store *core.PayloadStore) (int, error) {
	r.logger.Info("starting recovery from operation log", "path", r.log.Path())

	records, err := r.log.ReadAll()
	if err != nil {
		return 0, err
	}

	for _, rec := range records {
		switch rec.Op {
		case OpSet:
			store.Put(rec.TimerID, rec.Payload)
			queue.Insert(core.Timer{ID: rec.TimerID, ExpiresAt: rec.ExpiresAt})
			r.logger.Debug("recovered SetTimer", "timer_id", rec.TimerID, "expires_at", rec.ExpiresAt)
		case OpRemove:
			queue.Remove(rec.TimerID)
			store.Take(rec.TimerID)
			r.logger.Debug("recovered RemoveTimer", "timer_id", rec.TimerID)
		default:
			r.logger.Warn("skipping log record with unknown op", "op", string(rec.Op))
		}
	}

	r.logger.Info("recovery completed",
		"entries", len(records),
		"active", queue.Len(),
	)
	return len(records), nil
}
