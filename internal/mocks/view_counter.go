package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/task-api/internal/store"
)

// MockViewCounter implements store.ViewCounter for testing
type MockViewCounter struct {
	IncrementFn func(ctx context.Context, id int64) (int64, error)
	GetFn       func(ctx context.Context, id int64) (int64, error)
	GetManyFn   func(ctx context.Context, ids []int64) (map[int64]int64, error)
	DeleteFn    func(ctx context.Context, id int64) error

	mu     sync.Mutex
	counts map[int64]int64
	calls  map[string]int
}

var _ store.ViewCounter = (*MockViewCounter)(nil)

// NewMockViewCounter creates a MockViewCounter backed by an in-memory map
func NewMockViewCounter() *MockViewCounter {
	return &MockViewCounter{
		counts: make(map[int64]int64),
		calls:  make(map[string]int),
	}
}

// Increment implements store.ViewCounter
func (m *MockViewCounter) Increment(ctx context.Context, id int64) (int64, error) {
	m.record("Increment")
	if m.IncrementFn != nil {
		return m.IncrementFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[id]++
	return m.counts[id], nil
}

// Get implements store.ViewCounter
func (m *MockViewCounter) Get(ctx context.Context, id int64) (int64, error) {
	m.record("Get")
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[id], nil
}

// GetMany implements store.ViewCounter
func (m *MockViewCounter) GetMany(ctx context.Context, ids []int64) (map[int64]int64, error) {
	m.record("GetMany")
	if m.GetManyFn != nil {
		return m.GetManyFn(ctx, ids)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[int64]int64, len(ids))
	for _, id := range ids {
		counts[id] = m.counts[id]
	}
	return counts, nil
}

// Delete implements store.ViewCounter
func (m *MockViewCounter) Delete(ctx context.Context, id int64) error {
	m.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counts, id)
	return nil
}

// Set stores a count directly, bypassing the function fields
func (m *MockViewCounter) Set(id, count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[id] = count
}

// Count returns the stored count for id
func (m *MockViewCounter) Count(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[id]
}

// Has reports whether a count is stored for id
func (m *MockViewCounter) Has(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.counts[id]
	return ok
}

// Calls returns how many times method was invoked
func (m *MockViewCounter) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockViewCounter) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
}
