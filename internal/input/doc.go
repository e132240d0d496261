// Package input defines the contract every fuzz input type satisfies and the
// raw byte input used by the bundled generators and mutators. An input knows
// how to persist itself to a named file and how to rehydrate from one; the
// corpus relies on nothing else for disk-backed testcases.
package input
