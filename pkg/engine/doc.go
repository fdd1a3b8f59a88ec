// Package engine provides the durable timer engine.
//
// This package includes:
//   - Engine: the orchestrator owning the timer queue, payload store and
//     operation log
//   - Option: configuration options for Open()
//   - Hook registration and event subscription for monitoring
//   - The background expiration dispatcher
//
// Every mutation is written to the operation log before its in-memory effect
// becomes visible, so an engine reopened on the same log reconstructs the
// exact pending-timer state.
//
// Most users should import the root package github.com/jdziat/durable-timers
// which re-exports Engine and all option functions.
package engine
