package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/ambience/internal/domain"
)

// SequenceRandom replays a fixed list of indexes, each reduced modulo n.
type SequenceRandom struct {
	mu     sync.Mutex
	values []int
	next   int
}

func NewSequenceRandom(values ...int) *SequenceRandom {
	if len(values) == 0 {
		values = []int{0}
	}
	return &SequenceRandom{values: values}
}

func (s *SequenceRandom) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

// MockEventPublisher records published play events
type MockEventPublisher struct {
	mu              sync.Mutex
	Events          []domain.PlayEvent
	PublishPlayFunc func(ctx context.Context, event domain.PlayEvent) error
}

func (m *MockEventPublisher) PublishPlay(ctx context.Context, event domain.PlayEvent) error {
	if m.PublishPlayFunc != nil {
		return m.PublishPlayFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

// Published returns a copy of the recorded events
func (m *MockEventPublisher) Published() []domain.PlayEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.PlayEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
