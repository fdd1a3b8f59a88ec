// Package duration parses human-readable duration strings into milliseconds.
//
// Supported formats:
//   - "100ms" => 100 milliseconds
//   - "2.5s"  => 2500 milliseconds
//   - "1.5m"  => 90000 milliseconds
//   - "2hr"   => 7200000 milliseconds
//
// Most users should import the root package github.com/jdziat/durable-timers
// which re-exports ParseDuration.
package duration
