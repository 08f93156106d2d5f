// Package loads defines the load record model and the lifecycle semantics
// shared by every engine: the state enum with its transition table, the
// deterministic identity key, filter specifications, and the value
// normalization rules applied to feed data.
//
// Treat this package as the single source of truth for load semantics; when
// you add new states or descriptive fields, update the transition table and
// the store schema together.
package loads
