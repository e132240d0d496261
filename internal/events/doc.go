// Package events carries the notifications a fuzzing worker emits and the
// managers that act on them: logging, metrics, persistence, live streaming,
// console stats and cross-worker testcase sharing.
//
// A Manager is driven by exactly one worker goroutine. Shared sinks such as
// Broker, Hub and Monitor are safe for concurrent use and are attached to
// each worker through a per-worker manager.
package events
