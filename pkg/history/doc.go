// Package history provides an optional archive of dispatched timers.
//
// The operation log is the source of truth for recovery; history is purely
// observational. When configured, the engine records every fired and
// cancelled timer so operators can query outcomes after the fact.
//
// This package includes:
//   - History: the archive interface
//   - GormHistory: a GORM-based implementation supporting various databases
//
// Most users should import the root package github.com/jdziat/durable-timers
// which provides NewGormHistory() to create archive instances.
package history
