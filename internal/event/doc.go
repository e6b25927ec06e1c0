// Package event defines the Grove event union and its trust boundary.
//
// Every fact the system records is one of fifteen event variants sharing a
// common envelope (fieldId, timestamp, sessionId, type). Events are immutable
// once created; all mutation happens by appending new events to the log.
//
// The package owns two responsibilities:
//
//   - Typed representation: one Go struct per variant, a Type discriminant,
//     and a JSON codec that round-trips the flat wire shape.
//   - Validation: candidate JSON entering from storage or external callers is
//     unified against an embedded CUE schema before it is decoded. Anything
//     that does not match a known variant is rejected with a ValidationError.
//
// Code inside the module constructs events through typed constructors and may
// skip validation; bytes crossing the storage boundary may not.
package event
