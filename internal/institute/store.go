package institute

import (
	"context"
	"strings"
	"sync"
)

// Store is the institute persistence contract.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	FindByID(ctx context.Context, id int64) (*Record, error)
	FindByEmail(ctx context.Context, email string) (*Record, error)
}

// MemoryStore keeps institutes in memory. Tests and single-node dev setups use
// it directly.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int64]Record)}
}

func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = s.nextID
	s.byID[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, rec := range s.byID {
		if strings.ToLower(rec.Email) == needle {
			r := rec
			return &r, nil
		}
	}
	return nil, ErrNotFound
}
