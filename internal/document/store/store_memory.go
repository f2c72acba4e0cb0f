package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"veridoc/internal/document"
)

// MemoryStore is the in-memory DocumentStore used by unit tests and local
// development.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[int64]document.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, docs: make(map[int64]document.Record)}
}

func (s *MemoryStore) Save(_ context.Context, rec *document.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	rec.ID = s.nextID
	s.nextID++
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	s.docs[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*document.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) FindByNumber(_ context.Context, number string) (*document.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.docs {
		if rec.Number == number {
			out := rec
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ExistsByNumber(_ context.Context, instituteID int64, docType, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	target := strings.ToLower(strings.TrimSpace(number))
	for _, rec := range s.docs {
		if rec.InstituteID == instituteID && rec.DocType == docType && strings.ToLower(rec.Number) == target {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListByInstitute(_ context.Context, instituteID int64) ([]*document.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*document.Record
	for _, rec := range s.docs {
		if rec.InstituteID == instituteID {
			cp := rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*document.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*document.Record, 0, len(s.docs))
	for _, rec := range s.docs {
		cp := rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateHash(_ context.Context, id int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	rec.BlockchainHash = hash
	rec.UpdatedAt = time.Now()
	s.docs[id] = rec
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}
