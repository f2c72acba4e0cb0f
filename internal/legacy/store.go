package legacy

import (
	"context"
	"strings"
	"sync"
)

// Store is the legacy record persistence contract.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	FindByID(ctx context.Context, id int64) (*Record, error)
	FindByUIN(ctx context.Context, uin string) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id int64) error
}

// MemoryStore keeps legacy records in memory.
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

func (s *MemoryStore) FindByUIN(ctx context.Context, uin string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(uin))
	for _, rec := range s.byID {
		if strings.ToLower(rec.UIN) == needle {
			r := rec
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.byID))
	for id := int64(1); id <= s.nextID; id++ {
		if rec, ok := s.byID[id]; ok {
			r := rec
			out = append(out, &r)
		}
	}
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[rec.ID]; !ok {
		return ErrNotFound
	}
	s.byID[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}
