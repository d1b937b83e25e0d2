package repository

import (
	"context"
	"sync"

	"valetdesk/internal/status"
	"valetdesk/models"
)

// MemoryStore keeps tickets in insertion order for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	items []models.Item
	index map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Item, len(s.items))
	copy(items, s.items)
	return items, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return nil, status.ErrItemNotFound
	}
	item := s.items[pos]
	return &item, nil
}

func (s *MemoryStore) Insert(ctx context.Context, item models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[item.ID]; exists {
		return ErrDuplicateID
	}
	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item)
	return nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id, newStatus string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return nil, status.ErrItemNotFound
	}
	s.items[pos].Status = newStatus
	item := s.items[pos]
	return &item, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return status.ErrItemNotFound
	}

	s.items = append(s.items[:pos], s.items[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.items); i++ {
		s.index[s.items[i].ID] = i
	}
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}
