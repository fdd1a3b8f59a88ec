// Package timers provides a durable single-process delayed-execution
// scheduler backed by an append-only operation log.
//
// This is the main package users should import. It re-exports all public
// types from the internal pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	// Open an engine; the log is replayed before any timer fires
//	engine, _ := timers.Open("timers.log",
//	    timers.WithCallbackFunc(func(id uuid.UUID, payload string) {
//	        fmt.Printf("timer %s fired: %s\n", id, payload)
//	    }),
//	)
//	defer engine.Close()
//
//	// Register timers
//	engine.SetAfter("5s", "remind me")
//	id, _ := engine.SetAt(timers.NowMillis()+60_000, "in a minute")
//
//	// Cancel one before it fires
//	payload, ok, _ := engine.Remove(id)
package timers

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jdziat/durable-timers/pkg/core"
	"github.com/jdziat/durable-timers/pkg/duration"
	"github.com/jdziat/durable-timers/pkg/engine"
	"github.com/jdziat/durable-timers/pkg/history"
	"github.com/jdziat/durable-timers/pkg/oplog"
	"github.com/jdziat/durable-timers/pkg/schedule"
)

// Type aliases re-exported from the pkg/ packages.
type (
	// Engine is the durable timer engine.
	Engine = engine.Engine

	// Option configures an Engine at construction.
	Option = engine.Option

	// Config holds engine configuration.
	Config = engine.Config

	// Timer is a single pending deadline.
	Timer = core.Timer

	// TimerInfo is a timer joined with its payload for introspection.
	TimerInfo = core.TimerInfo

	// Callback receives a timer's id and payload when it fires.
	Callback = core.Callback

	// CallbackFunc adapts a plain function to the Callback interface.
	CallbackFunc = core.CallbackFunc

	// PayloadStore maps timer ids to their payloads.
	PayloadStore = core.PayloadStore

	// Event is the interface for all engine events.
	Event = core.Event

	// TimerSet is emitted when a timer is durably registered.
	TimerSet = core.TimerSet

	// TimerFired is emitted when a due timer is dispatched.
	TimerFired = core.TimerFired

	// TimerRemoved is emitted when a timer is explicitly cancelled.
	TimerRemoved = core.TimerRemoved

	// RecoveryCompleted is emitted once after the log has been replayed.
	RecoveryCompleted = core.RecoveryCompleted

	// Record is one immutable fact in the operation log.
	Record = oplog.Record

	// Op tags the kind of a log record.
	Op = oplog.Op

	// OpLog is the append-only operation log.
	OpLog = oplog.OpLog

	// RecoveryManager replays an operation log into fresh state.
	RecoveryManager = oplog.RecoveryManager

	// Schedule computes when a recurring timer should next fire.
	Schedule = schedule.Schedule

	// History archives fired and cancelled timers.
	History = history.History

	// HistoryEntry is one archived timer outcome.
	HistoryEntry = history.Entry

	// Outcome describes how a timer left the system.
	Outcome = history.Outcome

	// GormHistory implements History using GORM.
	GormHistory = history.GormHistory
)

// Log record kinds.
const (
	OpSet    = oplog.OpSet
	OpRemove = oplog.OpRemove
)

// History outcomes.
const (
	OutcomeFired     = history.OutcomeFired
	OutcomeCancelled = history.OutcomeCancelled
)

// Limits and defaults.
const (
	MaxPayloadSize      = engine.MaxPayloadSize
	DefaultPollInterval = engine.DefaultPollInterval
)

// Error variables.
var (
	ErrInvalidFormat   = duration.ErrInvalidFormat
	ErrInvalidNumber   = duration.ErrInvalidNumber
	ErrUnknownUnit     = duration.ErrUnknownUnit
	ErrClosed          = engine.ErrClosed
	ErrPayloadTooLarge = engine.ErrPayloadTooLarge
)

// Open opens or creates the operation log at path, replays it and starts the
// expiration dispatcher.
func Open(path string, opts ...Option) (*Engine, error) {
	return engine.Open(path, opts...)
}

// ParseDuration converts a duration string such as "500ms" or "2.5m" into
// milliseconds.
func ParseDuration(text string) (int64, error) {
	return duration.Parse(text)
}

// NowMillis returns the current time in milliseconds since the Unix epoch.
func NowMillis() int64 {
	return core.NowMillis()
}

// NewGormHistory creates a GORM-backed history archive.
func NewGormHistory(db *gorm.DB) *GormHistory {
	return history.NewGormHistory(db)
}

// Engine option functions

// WithCallback sets the capability invoked when a timer fires.
func WithCallback(cb Callback) Option {
	return engine.WithCallback(cb)
}

// WithCallbackFunc is WithCallback for a plain function.
func WithCallbackFunc(fn func(id uuid.UUID, payload string)) Option {
	return engine.WithCallbackFunc(fn)
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return engine.WithLogger(logger)
}

// WithPollInterval sets the dispatcher's bounded poll interval.
func WithPollInterval(d time.Duration) Option {
	return engine.WithPollInterval(d)
}

// WithHistory enables archiving of fired and cancelled timers.
func WithHistory(h History) Option {
	return engine.WithHistory(h)
}

// WithEventBuffer sets the event stream channel capacity.
func WithEventBuffer(n int) Option {
	return engine.WithEventBuffer(n)
}

// Schedule functions

// Every creates a schedule that fires at fixed intervals.
func Every(d time.Duration) Schedule {
	return schedule.Every(d)
}

// Daily creates a schedule that fires at a specific time each day (UTC).
func Daily(hour, minute int) Schedule {
	return schedule.Daily(hour, minute)
}

// Cron creates a schedule from a standard five-field cron expression.
func Cron(expr string) (Schedule, error) {
	return schedule.Cron(expr)
}
