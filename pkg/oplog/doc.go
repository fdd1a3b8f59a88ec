// Package oplog provides the append-only operation log and crash recovery.
//
// This package includes:
//   - Record: one SetTimer or RemoveTimer fact, serialized as a JSON line
//   - OpLog: the durable log with flush-on-every-append semantics
//   - RecoveryManager: replays the log into a fresh queue and payload store
//
// The log is write-ahead: every mutation is appended and flushed before its
// in-memory effect becomes visible, so any state visible in memory has
// already been made durable.
//
// Most users should import the root package github.com/jdziat/durable-timers
// instead of this package directly.
package oplog
