// Package corpus holds testcases and the collections they live in.
//
// A Testcase owns an optional in-memory input and optionally names a file
// that can rehydrate it; at least one of the two is always present. The
// Corpus interface is the minimal contract the fuzzer consumes: Add, Get and
// a policy-defined Next. InMemory selects at random, Queue round-robin, and
// OnDisk keeps inputs in files and can rebuild itself from a Catalog.
package corpus
