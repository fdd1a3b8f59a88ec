// Package timerqueue provides the expiration-ordered timer queue.
//
// The queue is a mutex-guarded min-heap keyed by deadline; the minimum
// element is always the earliest deadline known to the system. Removal by
// arbitrary id is a linear scan, an accepted cost for moderate timer counts.
//
// Most users should import the root package github.com/jdziat/durable-timers
// instead of this package directly.
package timerqueue
