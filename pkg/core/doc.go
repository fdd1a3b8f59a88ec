// Package core provides the fundamental types for the timers package.
//
// This package contains:
//   - Timer and TimerInfo data models
//   - PayloadStore, the id-to-payload map shared with the dispatcher
//   - Callback, the capability invoked when a timer fires
//   - Event types for engine monitoring
//
// Most users should import the root package github.com/jdziat/durable-timers
// instead of this package directly.
package core
