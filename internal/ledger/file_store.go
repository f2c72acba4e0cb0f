package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore persists the ledger as a single JSON array on disk. Every mutation
// rewrites the whole file through a temp file and rename, so readers never see
// a partial write. A missing or unparseable file is treated as an empty ledger
// rather than a fatal error.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	entries []Entry
	log     *slog.Logger
	sink    Sink
}

// NewFileStore loads (or initializes) the ledger at path.
func NewFileStore(path string, log *slog.Logger, sink Sink) (*FileStore, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &FileStore{path: path, log: log, sink: sink}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.entries = []Entry{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn("ledger file is corrupt, starting empty",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		s.entries = []Entry{}
		return nil
	}
	s.entries = entries
	return nil
}

// persist writes the full ledger atomically. Callers hold the write lock.
func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func (s *FileStore) Append(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Status == "" {
		entry.Status = StatusConfirmed
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	err := s.persist()
	if err != nil {
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(ctx, entry)
	return nil
}

func (s *FileStore) Tombstone(ctx context.Context, docID int64) error {
	entry := Entry{
		DocID:     docID,
		Timestamp: time.Now().UTC(),
		Data:      map[string]any{"action": "deleted"},
		Status:    StatusDeleted,
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	err := s.persist()
	if err != nil {
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(ctx, entry)
	return nil
}

func (s *FileStore) Latest(ctx context.Context, docID int64) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].DocID == docID {
			entry := s.entries[i]
			return &entry, true, nil
		}
	}
	return nil, false, nil
}

func (s *FileStore) Entries(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *FileStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := Stats{TotalEntries: len(s.entries)}
	for i := range s.entries {
		if s.entries[i].Status == StatusConfirmed {
			stats.ConfirmedEntries++
		}
	}
	if n := len(s.entries); n > 0 {
		ts := s.entries[n-1].Timestamp
		stats.LastUpdated = &ts
	}
	return stats, nil
}

func (s *FileStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.entries
	s.entries = []Entry{}
	if err := s.persist(); err != nil {
		s.entries = prev
		return err
	}
	return nil
}

func (s *FileStore) publish(ctx context.Context, entry Entry) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Publish(ctx, entry); err != nil {
		s.log.Warn("ledger sink publish failed",
			slog.Int64("doc_id", entry.DocID),
			slog.String("error", err.Error()))
	}
}
