package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDSource generates session ids in a predictable sequence.
//
// This enables deterministic test execution and golden snapshot comparison:
// the same scenario with the same SequentialIDSource produces byte-identical
// event logs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDSource struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDSource creates a generator producing "<prefix>-0001",
// "<prefix>-0002", and so on. If prefix is empty, "session-test" is used.
func NewSequentialIDSource(prefix string) *SequentialIDSource {
	if prefix == "" {
		prefix = "session-test"
	}
	return &SequentialIDSource{prefix: prefix}
}

// NewSessionID returns the next id in the sequence.
//
// Implements eventlog.IDSource.
func (s *SequentialIDSource) NewSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%04d", s.prefix, s.n)
}
