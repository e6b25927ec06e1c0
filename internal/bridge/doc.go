// Package bridge is the single writer in front of the event log. A Provider
// owns the current log behind a mutex, validates and appends dispatched
// events, persists best-effort, and serves memoized projections to readers.
// Emitters give call sites one typed constructor per event type so nothing
// outside this package stamps envelopes by hand.
package bridge
