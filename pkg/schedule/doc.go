// Package schedule provides recurrence rules for recurring timers.
//
// This package includes:
//   - Schedule interface for computing the next occurrence
//   - Every() for fixed-interval recurrence
//   - Daily() for a specific time each day
//   - Cron() for cron expression-based recurrence
//
// Each occurrence of a recurring timer is a fresh one-shot timer; the engine
// re-arms the next occurrence when the current one fires.
//
// Most users should import the root package github.com/jdziat/durable-timers
// which re-exports these functions.
package schedule
