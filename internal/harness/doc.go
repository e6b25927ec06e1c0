// Package harness replays YAML-scripted event scenarios through a bridge
// provider with a frozen clock and sequential session ids, then snapshots
// every projection. Snapshots are compared against golden files, so a
// projection change shows up as a readable diff instead of silent drift.
package harness
