package catalog

import (
	"context"
	"sync"

	"github.com/buildwise/buildwise/pkg/parts"
)

// Memory is an in-process Catalog over a fixed snapshot of components.
// It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	items  []parts.Component
	failOn map[parts.Category]error
}

// NewMemory canonicalizes and stores a copy of items.
func NewMemory(items ...parts.Component) *Memory {
	m := &Memory{failOn: make(map[parts.Category]error)}
	m.Add(items...)
	return m
}

// Add appends components to the snapshot.
func (m *Memory) Add(items ...parts.Component) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range items {
		m.items = append(m.items, parts.Canonicalize(c))
	}
}

// FailCategory makes every query for cat return err. Passing nil clears it.
func (m *Memory) FailCategory(cat parts.Category, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failOn, cat)
		return
	}
	m.failOn[cat] = err
}

func (m *Memory) Find(ctx context.Context, q Query) ([]parts.Component, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err, ok := m.failOn[q.Category]; ok {
		return nil, err
	}
	return Apply(m.items, q), nil
}
