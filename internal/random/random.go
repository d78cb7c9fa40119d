package random

import (
	"sync"

	"github.com/valyala/fastrand"
)

// Source is the random draw interface injected into game logic so tests
// can seed deterministic sequences.
type Source interface {
	// Intn returns a uniform value in [0, n). n must be > 0.
	Intn(n int) int
}

// RNG is the default Source. fastrand's generator is not safe for
// concurrent use, so draws are serialized.
type RNG struct {
	mu  sync.Mutex
	rng fastrand.RNG
}

// New returns an RNG seeded from the system source.
func New() *RNG {
	return &RNG{}
}

// NewSeeded returns an RNG with a fixed seed for reproducible draws.
func NewSeeded(seed uint32) *RNG {
	r := &RNG{}
	r.rng.Seed(seed)
	return r
}

func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.rng.Uint32n(uint32(n)))
}

// Shuffle permutes the first n elements in place using swap, Fisher-Yates.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		swap(i, j)
	}
}
