// Package store persists load rows in SQLite and is the sole writer of
// durable state. Engines never touch storage directly; they issue reads and
// writes through Store methods, each of which runs as a single transaction so
// concurrent callers observe either the fully-old or fully-new form of any
// row.
//
// The shared filter-to-predicate translator in filters.go is used by both the
// shortlist and query paths so the two can never drift in interpretation.
package store
