package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator hands out predictable identifiers of the form prefix-1,
// prefix-2 and so on, replacing random UUIDs in tests.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    uint64
}

// NewIDGenerator builds a generator using prefix, defaulting to "id" when
// prefix is empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next hands out the following identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// NextFunc adapts the generator to the id-function shape services accept. A
// nil generator yields empty identifiers.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// SetPrefix swaps the prefix used for subsequent identifiers.
func (g *IDGenerator) SetPrefix(prefix string) {
	g.mu.Lock()
	g.prefix = prefix
	g.mu.Unlock()
}

// SetCounter rewinds or fast-forwards the sequence. Next returns counter+1.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	g.seq = counter
	g.mu.Unlock()
}
