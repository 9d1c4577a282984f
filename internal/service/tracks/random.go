package tracks

import (
	"math/rand/v2"
	"sync"

	"github.com/seu-repo/ambience/internal/ports"
)

type globalSource struct{}

// NewRandomSource returns a source backed by the runtime's global generator.
func NewRandomSource() ports.RandomSource {
	return globalSource{}
}

func (globalSource) Intn(n int) int {
	return rand.IntN(n)
}

type seededSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededRandomSource returns a reproducible source, mainly for tests and the simulator.
func NewSeededRandomSource(seed uint64) ports.RandomSource {
	return &seededSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}
