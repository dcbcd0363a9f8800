// Package testutil provides deterministic helpers shared by the engine
// test suites.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates predictable ids: prefix-001, prefix-002, ...
//
// This enables deterministic test execution and golden snapshot
// comparison: the same mutation sequence with the same SequenceIDs
// produces byte-identical serialized documents.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequenceIDs creates a generator with the given id prefix. An empty
// prefix defaults to "id".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next id in the sequence.
//
// Implements timeline.IDGenerator.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next)
}

// Reset restarts the sequence. After Reset the next Generate returns
// prefix-001 again, so a rebuilt fixture reproduces the same ids.
func (g *SequenceIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next = 0
}
