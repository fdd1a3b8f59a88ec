package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jdziat/durable-timers/pkg/core"
	"github.com/jdziat/durable-timers/pkg/duration"
	"github.com/jdziat/durable-timers/pkg/history"
	"github.com/jdziat/durable-timers/pkg/oplog"
	"github.com/jdziat/durable-timers/pkg/timerqueue"
)

// MaxPayloadSize caps how large a single payload may be. Payloads are stored
// verbatim in the operation log, so one oversized payload would bloat every
// future replay.
const MaxPayloadSize = 1 << 20

var (
	// ErrClosed is returned by mutations on a closed engine.
	ErrClosed = errors.New("timers: engine is closed")

	// ErrPayloadTooLarge is returned when a payload exceeds MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("timers: payload exceeds maximum size")
)

// Engine is the durable timer engine. It owns the timer queue, the payload
// store and the operation log, and runs a single background dispatcher
// goroutine that fires due timers. All exported methods are safe for
// concurrent use.
type Engine struct {
	queue    *timerqueue.Queue
	store    *core.PayloadStore
	log      *oplog.OpLog
	logger   *slog.Logger
	callback core.Callback
	archive  history.History

	pollInterval time.Duration

	recovered atomic.Bool
	closed    atomic.Bool

	// wake is signalled on every set/remove so the dispatcher re-evaluates
	// the queue head instead of sleeping out a stale deadline.
	wake chan struct{}
	done chan struct{}

	wg        sync.WaitGroup
	closeOnce sync.Once

	mu        sync.RWMutex
	onSet     []func(core.Timer, string)
	onFire    []func(uuid.UUID, string)
	onRemove  []func(uuid.UUID, string)
	recurring map[uuid.UUID]recurringEntry

	events chan core.Event
}

// Open opens or creates the operation log at path, replays it into a fresh
// engine and starts the expiration dispatcher. Construction fails if the log
// cannot be opened or read: there is no engine without durability.
func Open(path string, opts ...Option) (*Engine, error) {
	config := defaultConfig()
	for _, opt := range opts {
		opt.Apply(&config)
	}

	log, err := oplog.Open(path)
	if err != nil {
		return nil, err
	}
	log.SetLogger(config.Logger)

	e := &Engine{
		queue:        timerqueue.New(),
		store:        core.NewPayloadStore(),
		log:          log,
		logger:       config.Logger,
		callback:     config.Callback,
		archive:      config.History,
		pollInterval: config.PollInterval,
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
		recurring:    make(map[uuid.UUID]recurringEntry),
		events:       make(chan core.Event, config.EventBuffer),
	}

	recovery := oplog.NewRecoveryManager(log, config.Logger)
	entries, err := recovery.Replay(e.queue, e.store)
	if err != nil {
		log.Close()
		return nil, err
	}
	e.recovered.Store(true)
	e.emit(&core.RecoveryCompleted{
		Entries:   entries,
		Active:    e.queue.Len(),
		Timestamp: time.Now(),
	})

	e.wg.Add(1)
	go e.dispatchLoop()

	return e, nil
}

// SetAt durably registers a timer for an absolute deadline in milliseconds
// since the Unix epoch and returns its id. The log append completes before
// the timer becomes visible; on append failure no state is mutated.
func (e *Engine) SetAt(expiresAtMillis int64, payload string) (uuid.UUID, error) {
	if e.closed.Load() {
		return uuid.Nil, ErrClosed
	}
	if len(payload) > MaxPayloadSize {
		return uuid.Nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}

	timer := core.NewTimer(expiresAtMillis)
	if err := e.log.Append(oplog.SetRecord(timer, payload)); err != nil {
		return uuid.Nil, err
	}

	e.store.Put(timer.ID, payload)
	e.queue.Insert(timer)
	e.signalWake()

	e.mu.RLock()
	hooks := e.onSet
	e.mu.RUnlock()
	for _, fn := range hooks {
		fn(timer, payload)
	}
	e.emit(&core.TimerSet{Timer: timer, Timestamp: time.Now()})

	return timer.ID, nil
}

// SetAfter parses a duration string such as "500ms" or "2.5m" and registers
// a timer that far in the future.
func (e *Engine) SetAfter(durationText, payload string) (uuid.UUID, error) {
	millis, err := duration.Parse(durationText)
	if err != nil {
		return uuid.Nil, err
	}
	return e.SetAt(core.NowMillis()+millis, payload)
}

// Remove durably cancels a timer and returns its payload. The cancel attempt
// is logged even for unknown ids. A removal racing the dispatcher is safe:
// whichever side removes the queue entry first owns the payload, so it is
// delivered or returned exactly once, never both.
func (e *Engine) Remove(id uuid.UUID) (string, bool, error) {
	if e.closed.Load() {
		return "", false, ErrClosed
	}

	if err := e.log.Append(oplog.RemoveRecord(id)); err != nil {
		return "", false, err
	}

	e.dropRecurring(id)

	timer, ok := e.queue.Remove(id)
	if !ok {
		return "", false, nil
	}
	payload, _ := e.store.Take(id)
	e.signalWake()

	e.mu.RLock()
	hooks := e.onRemove
	e.mu.RUnlock()
	for _, fn := range hooks {
		fn(id, payload)
	}
	e.emit(&core.TimerRemoved{ID: id, Payload: payload, Timestamp: time.Now()})
	e.record(id, timer.ExpiresAt, payload, history.OutcomeCancelled)

	return payload, true, nil
}

// PeekNext returns the earliest pending timer without removing it.
func (e *Engine) PeekNext() (core.Timer, bool) {
	return e.queue.Peek()
}

// ListActive returns a snapshot of all queued timers joined with their
// payloads, sorted by ascending deadline. Due-but-undispatched timers are
// included with a zero TimeLeft.
func (e *Engine) ListActive() []core.TimerInfo {
	timers := e.queue.Snapshot()
	sort.Slice(timers, func(i, j int) bool {
		if timers[i].ExpiresAt != timers[j].ExpiresAt {
			return timers[i].ExpiresAt < timers[j].ExpiresAt
		}
		return bytes.Compare(timers[i].ID[:], timers[j].ID[:]) < 0
	})

	now := core.NowMillis()
	infos := make([]core.TimerInfo, 0, len(timers))
	for _, t := range timers {
		payload, _ := e.store.Get(t.ID)
		infos = append(infos, core.TimerInfo{
			ID:        t.ID,
			ExpiresAt: t.ExpiresAt,
			Payload:   payload,
			TimeLeft:  t.TimeLeft(now),
		})
	}
	return infos
}

// Count returns the number of currently queued timers.
func (e *Engine) Count() int {
	return e.queue.Len()
}

// LogPath returns the path of the operation log backing this engine.
func (e *Engine) LogPath() string {
	return e.log.Path()
}

/// Events returns the engine's event stream. Events are emitted best-effort:
// when the buffer is full they are dropped, never blocking a mutation or the
// dispatcher.
func (e *Engine) Events() <-chan core.Event {
	return e.events
}

// OnSet registers a hook called after a timer is durably registered.
func (e *Engine) OnSet(fn func(t core.Timer, payload string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSet = append(e.onSet, fn)
}

// OnFire registers a hook called after a due timer is dispatched.
func (e *Engine) OnFire(fn func(id uuid.UUID, payload string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFire = append(e.onFire, fn)
}

// OnRemove registers a hook called after a timer is explicitly cancelled.
func (e *Engine) OnRemove(fn func(id uuid.UUID, payload string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onRemove = append(e.onRemove, fn)
}

// Close stops the dispatcher and closes the operation log. Pending timers
// stay durable in the log; reopening the same path restores them. Close is
// idempotent.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		close(e.done)
		e.wg.Wait()
		err = e.log.Close()
	})
	return err
}

func (e *Engine) signalWake() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) emit(ev core.Event) {
	select {
	case e.events <- ev:
	default:
	}
}

// record archives a timer outcome when a history backend is configured.
// History is observational only; failures are logged, never propagated.
func (e *Engine) record(id uuid.UUID, expiresAt int64, payload string, outcome history.Outcome) {
	if e.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := e.archive.Record(ctx, &history.Entry{
		TimerID:   id.String(),
		ExpiresAt: expiresAt,
		Payload:   payload,
		Outcome:   outcome,
	})
	if err != nil {
		e.logger.Warn("failed to archive timer outcome",
			"timer_id", id,
			"outcome", string(outcome),
			"error", err,
		)
	}
}
