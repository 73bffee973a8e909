package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process store for development and tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]Document
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]Document)}
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return withID(clone(doc).(Document), id), nil
}

func (m *Memory) List(_ context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.data[collection]))
	for id := range m.data[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, withID(clone(m.data[collection][id]).(Document), id))
	}
	return out, nil
}

func (m *Memory) Create(_ context.Context, collection string, doc Document) (string, error) {
	id := doc.ID()
	if id == "" {
		id = uuid.NewString()
	}
	b, err := body(doc)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	col := m.collection(collection)
	if _, ok := col[id]; ok {
		return "", ErrExists
	}
	col[id] = b
	return id, nil
}

func (m *Memory) Set(_ context.Context, collection, id string, doc Document) error {
	b, err := body(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collection(collection)[id] = b
	return nil
}

func (m *Memory) Update(_ context.Context, collection, id string, fields ...Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	next := clone(doc).(Document)
	if err := Apply(next, fields...); err != nil {
		return err
	}
	m.data[collection][id] = next
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.data[collection], id)
	return nil
}

func (m *Memory) collection(name string) map[string]Document {
	col, ok := m.data[name]
	if !ok {
		col = make(map[string]Document)
		m.data[name] = col
	}
	return col
}
