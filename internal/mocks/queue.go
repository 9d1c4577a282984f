package mocks

import (
	"context"
	"sync"
)

// MockMessageQueue records publishes and lets tests push inbound messages to
// subscribers with Deliver.
type MockMessageQueue struct {
	mu          sync.Mutex
	published   map[string][][]byte
	subscribers map[string][]func([]byte) error
	closed      bool

	PublishFunc func(ctx context.Context, subject string, data []byte) error
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{
		published:   make(map[string][][]byte),
		subscribers: make(map[string][]func([]byte) error),
	}
}

func (m *MockMessageQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, subject, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[subject] = append(m.published[subject], data)
	return nil
}

func (m *MockMessageQueue) Subscribe(subject string, handler func([]byte) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[subject] = append(m.subscribers[subject], handler)
	return nil
}

func (m *MockMessageQueue) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Published returns the messages published on subject
func (m *MockMessageQueue) Published(subject string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.published[subject]...)
}

// Deliver hands data to every subscriber of subject and returns the first handler error
func (m *MockMessageQueue) Deliver(subject string, data []byte) error {
	m.mu.Lock()
	handlers := append([]func([]byte) error(nil), m.subscribers[subject]...)
	m.mu.Unlock()

	var first error
	for _, h := range handlers {
		if err := h(data); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Closed reports whether Close was called
func (m *MockMessageQueue) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
