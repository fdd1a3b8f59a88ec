package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jdziat/durable-timers/pkg/core"
	"github.com/jdziat/durable-timers/pkg/history"
)

// Option configures an Engine at construction.
type Option interface {
	Apply(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) Apply(c *Config) { f(c) }

// Config holds engine configuration.
type Config struct {
	// Callback receives every fired timer. Nil means fire-and-drop: due
	// timers are still durably removed, their payloads discarded.
	Callback core.Callback

	// Logger is used for recovery, dispatch and log-corruption messages.
	Logger *slog.Logger

	// PollInterval bounds how long the dispatcher sleeps when the queue is
	// empty.
	PollInterval time.Duration

	// History optionally archives fired and cancelled timers.
	History history.History

	// EventBuffer is the capacity of the event stream channel.
	EventBuffer int
}

// DefaultPollInterval is the dispatcher's sleep bound when no timer is queued.
const DefaultPollInterval = 100 * time.Millisecond

func defaultConfig() Config {
	return Config{
		Logger:       slog.Default(),
		PollInterval: DefaultPollInterval,
		EventBuffer:  1000,
	}
}

// WithCallback sets the capability invoked when a timer fires.
func WithCallback(cb core.Callback) Option {
	return optionFunc(func(c *Config) {
		c.Callback = cb
	})
}

// WithCallbackFunc is WithCallback for a plain function.
func WithCallbackFunc(fn func(id uuid.UUID, payload string)) Option {
	return optionFunc(func(c *Config) {
		c.Callback = core.CallbackFunc(fn)
	})
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	})
}

// WithPollInterval sets the dispatcher's bounded poll interval.
func WithPollInterval(d time.Duration) Option {
	return optionFunc(func(c *Config) {
		if d > 0 {
			c.PollInterval = d
		}
	})
}

// WithHistory enables archiving of fired and cancelled timers.
func WithHistory(h history.History) Option {
	return optionFunc(func(c *Config) {
		c.History = h
	})
}

// WithEventBuffer sets the event stream channel capacity.
func WithEventBuffer(n int) Option {
	return optionFunc(func(c *Config) {
		if n > 0 {
			c.EventBuffer = n
		}
	})
}
