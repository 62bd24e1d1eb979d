package testfixtures

import (
	"fmt"
	"sync"
)

// SaltGenerator produces deterministic signing salts for tests.
type SaltGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewSaltGenerator constructs a generator that yields salts with the given
// prefix. When prefix is empty, "salt" is used.
func NewSaltGenerator(prefix string) *SaltGenerator {
	if prefix == "" {
		prefix = "salt"
	}
	return &SaltGenerator{prefix: prefix}
}

// Next returns the next salt in the sequence.
func (g *SaltGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%04d", g.prefix, g.counter)
}

// NextFunc exposes Next as a function suitable for dependency injection.
func (g *SaltGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// SetCounter overrides the internal counter, enabling deterministic resets.
func (g *SaltGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	g.counter = counter
	g.mu.Unlock()
}
