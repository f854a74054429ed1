package service

import (
	"math/rand"
	"sync"
)

// NumberGenerator produces short display numbers for new tickets. Numbers are
// advisory, not primary keys; collisions are tolerated.
type NumberGenerator interface {
	Next() int
}

type randomNumberGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomNumberGenerator returns the default generator, yielding numbers in
// [1, 9999].
func NewRandomNumberGenerator() NumberGenerator {
	return &randomNumberGenerator{rng: rand.New(rand.NewSource(rand.Int63()))}
}

func (g *randomNumberGenerator) Next() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(9999) + 1
}

// SequenceNumberGenerator yields consecutive numbers starting at 1. Useful
// where deterministic numbering matters.
type SequenceNumberGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *SequenceNumberGenerator) Next() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next
}
