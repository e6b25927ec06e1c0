// Package eventlog implements the versioned Grove event log and its pure
// operations.
//
// A Log is a value: every operation returns a fresh Log and never mutates
// its receiver. Sub-structures that an operation does not touch may be
// shared by reference between the old and new value, so callers must treat
// any Log they hold as read-only.
//
// The log separates two lifetimes. Session events are cleared when a new
// session starts; cumulative events (journey completions, topic
// explorations, insight captures) survive across sessions in typed buckets
// and are additionally mirrored into the session slice when appended.
package eventlog
