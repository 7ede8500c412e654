// Package identity manages the pool of client identities (User-Agent
// strings) presented by the crawler and rotates between them at random.
package identity

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// DefaultProbability is used when MaybeRotate receives a value outside 0..100.
const DefaultProbability = 30

// ErrEmptyPool is returned when a pool is built from zero identities.
var ErrEmptyPool = errors.New("identity pool is empty")

// Pool is an ordered list of identities with one current selection.
// It is safe for concurrent use.
type Pool struct {
	mu         sync.Mutex
	identities []string
	current    int
	generation uint64
	rng        *rand.Rand
}

// Option configures a Pool.
type Option func(*Pool)

// WithRand sets the random source used for selection. Useful for tests.
func WithRand(rng *rand.Rand) Option {
	return func(p *Pool) {
		p.rng = rng
	}
}

// NewPool builds a pool from identities and makes a random initial selection.
// At least one identity is required.
func NewPool(identities []string, opts ...Option) (*Pool, error) {
	if len(identities) == 0 {
		return nil, ErrEmptyPool
	}

	p := &Pool{
		identities: append([]string(nil), identities...),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // identity selection is not security sensitive
	}

	p.RotateRandom()
	return p, nil
}

// Len returns the number of identities in the pool.
func (p *Pool) Len() int {
	return len(p.identities)
}

// Current returns the active identity.
func (p *Pool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identities[p.current]
}

// Generation returns how many selections have been made so far,
// including the initial one. Every rotation increments it, even when
// the draw lands on the identity that was already active.
func (p *Pool) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// RotateRandom selects a uniformly random identity. Repeats are allowed.
func (p *Pool) RotateRandom() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotateLocked()
}

// MaybeRotate rotates with the given probability in percent. A draw in
// [0,100] below probability, or a probability of exactly 100, rotates.
// Out-of-range values fall back to DefaultProbability.
func (p *Pool) MaybeRotate(probability int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maybeRotateLocked(probability)
}

// Next performs MaybeRotate and returns the resulting identity in one
// critical section, so concurrent callers never observe a torn selection.
func (p *Pool) Next(probability int) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maybeRotateLocked(probability)
	return p.identities[p.current]
}

func (p *Pool) maybeRotateLocked(probability int) {
	if probability < 0 || probability > 100 {
		probability = DefaultProbability
	}
	chance := p.rng.IntN(101)
	if chance < probability || probability == 100 {
		p.rotateLocked()
	}
}

func (p *Pool) rotateLocked() {
	p.current = p.rng.IntN(len(p.identities))
	p.generation++
}
