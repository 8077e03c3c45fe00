package geo

import (
	"context"
	"sync"
)

// MemoryIndex is an in-process Index over a mutable set of points.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]Point
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]Point)}
}

func (m *MemoryIndex) Upsert(_ context.Context, id string, p Point) error {
	m.mu.Lock()
	m.entries[id] = p
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryIndex) NearestWithinRadius(ctx context.Context, origin Point, radiusMeters float64, filter Filter, limit int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	entries := make([]Entry, 0, len(m.entries))
	for id, p := range m.entries {
		entries = append(entries, Entry{ID: id, Point: p})
	}
	m.mu.RUnlock()

	return Nearest(entries, origin, radiusMeters, filter, limit), nil
}
