package fraud

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"
)

// LogEntry records one completed analysis for later audit.
type LogEntry struct {
	AnalysisID string    `json:"analysis_id"`
	Filename   string    `json:"filename"`
	RiskLevel  RiskLevel `json:"risk_level"`
	RiskScore  float64   `json:"risk_score"`
	Issues     []string  `json:"issues,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// LogStore persists analysis logs.
type LogStore interface {
	Save(ctx context.Context, entry LogEntry) error
	List(ctx context.Context, limit int) ([]LogEntry, error)
}

// MemoryLogStore keeps logs in memory, newest first.
type MemoryLogStore struct {
	mu      sync.RWMutex
	entries []LogEntry
}

func NewMemoryLogStore() *MemoryLogStore {
	return &MemoryLogStore{}
}

func (s *MemoryLogStore) Save(ctx context.Context, entry LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryLogStore) List(ctx context.Context, limit int) ([]LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LogEntry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

// SQLiteLogStore persists logs in the shared sqlite database. Issues are
// stored as a JSON array.
type SQLiteLogStore struct {
	db *sql.DB
}

func NewSQLiteLogStore(db *sql.DB) (*SQLiteLogStore, error) {
	s := &SQLiteLogStore{db: db}
	query := `
	CREATE TABLE IF NOT EXISTS fraud_logs (
		analysis_id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		risk_score REAL NOT NULL,
		issues TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL
	);`
	if _, err := s.db.ExecContext(context.Background(), query); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteLogStore) Save(ctx context.Context, entry LogEntry) error {
	issues, err := json.Marshal(entry.Issues)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fraud_logs (analysis_id, filename, risk_level, risk_score, issues, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.AnalysisID, entry.Filename, string(entry.RiskLevel), entry.RiskScore, string(issues), entry.CreatedAt)
	return err
}

func (s *SQLiteLogStore) List(ctx context.Context, limit int) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT analysis_id, filename, risk_level, risk_score, issues, created_at
		FROM fraud_logs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []LogEntry
	for rows.Next() {
		var entry LogEntry
		var level, issues string
		if err := rows.Scan(&entry.AnalysisID, &entry.Filename, &level, &entry.RiskScore, &issues, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.RiskLevel = RiskLevel(level)
		if err := json.Unmarshal([]byte(issues), &entry.Issues); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
