// Package fuzzer holds the run-wide State, the Engine that owns the target
// executor, and the Fuzzer that drives the select, stage and drain loop.
//
// A State, its Corpus and its Engine form one worker and are driven by a
// single goroutine. Nothing in this package takes locks.
package fuzzer
