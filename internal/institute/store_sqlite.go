package institute

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteStore persists institutes in the shared sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS institutes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO institutes (name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		rec.Name, rec.Email, rec.PasswordHash, rec.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

func (s *SQLiteStore) FindByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at FROM institutes WHERE id = ?`, id)
	return scanInstitute(row)
}

func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM institutes WHERE email = TRIM(?) COLLATE NOCASE`, email)
	return scanInstitute(row)
}

func scanInstitute(row *sql.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.PasswordHash, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
