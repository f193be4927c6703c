package store

import (
	"context"
	"sync"

	"github.com/serroba/snowlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu       sync.RWMutex
	mappings map[shortener.Code]*shortener.Mapping
	byURL    map[string]shortener.Code // long url -> first code saved for it
	owners   []string                  // owners in first seen order
	counts   map[string]int64
}

// NewMemoryStore creates a new in-memory mapping store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mappings: make(map[shortener.Code]*shortener.Mapping),
		byURL:    make(map[string]shortener.Code),
		counts:   make(map[string]int64),
	}
}

func (m *MemoryStore) ExistsByCode(_ context.Context, code shortener.Code) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.mappings[code]

	return ok, nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mapping, ok := m.mappings[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return clone(mapping), nil
}

func (m *MemoryStore) FindByLongURL(_ context.Context, longURL string) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.byURL[longURL]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return clone(m.mappings[code]), nil
}

func (m *MemoryStore) Save(_ context.Context, mapping *shortener.Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.mappings[mapping.Code]; ok {
		return shortener.ErrCodeTaken
	}

	m.mappings[mapping.Code] = clone(mapping)

	if _, ok := m.byURL[mapping.LongURL]; !ok {
		m.byURL[mapping.LongURL] = mapping.Code
	}

	if owner := mapping.Owner(); mapping.OwnerID != nil {
		if _, seen := m.counts[owner]; !seen {
			m.owners = append(m.owners, owner)
		}

		m.counts[owner]++
	}

	return nil
}

func (m *MemoryStore) CountByOwner(_ context.Context) ([]shortener.OwnerCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make([]shortener.OwnerCount, 0, len(m.owners))
	for _, owner := range m.owners {
		counts = append(counts, shortener.OwnerCount{OwnerID: owner, Count: m.counts[owner]})
	}

	return counts, nil
}

// Len returns the number of stored mappings.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.mappings)
}

func clone(mapping *shortener.Mapping) *shortener.Mapping {
	c := *mapping
	if mapping.OwnerID != nil {
		owner := *mapping.OwnerID
		c.OwnerID = &owner
	}

	return &c
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
