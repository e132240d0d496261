// Package metadata implements the two heterogeneous registries used by the
// fuzzer: a name-keyed Registry holding run-wide facts on the State, and a
// type-keyed TypeMap holding per-testcase facts attached by feedbacks.
//
// Values are stored behind interfaces and retrieved with checked type
// assertions through the generic Lookup and Get helpers. TypeMap entries whose
// type was registered with Register survive msgpack persistence; others stay
// in memory only.
package metadata
