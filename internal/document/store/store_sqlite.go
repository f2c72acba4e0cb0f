package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"veridoc/internal/document"
)

// SQLiteStore is the default on-disk DocumentStore. It migrates its schema on
// open.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the sqlite database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc sqlite is not safe for concurrent writers on one connection.
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an existing handle (used by tests sharing a database).
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		institute_id INTEGER NOT NULL,
		doc_type TEXT NOT NULL,
		name TEXT NOT NULL,
		number TEXT,
		exam_name TEXT,
		issue_date TEXT NOT NULL,
		blockchain_hash TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		file_path TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

const sqliteColumns = `id, institute_id, doc_type, name, number, exam_name, issue_date, blockchain_hash, status, file_path, created_at, updated_at`

func (s *SQLiteStore) Save(ctx context.Context, rec *document.Record) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (institute_id, doc_type, name, number, exam_name, issue_date, blockchain_hash, status, file_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.InstituteID, rec.DocType, rec.Name, rec.Number, rec.ExamName, rec.IssueDate,
		rec.BlockchainHash, rec.Status, rec.FilePath, rec.CreatedAt, rec.UpdatedAt,
	)
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

func (s *SQLiteStore) FindByID(ctx context.Context, id int64) (*document.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM documents WHERE id = ?`, id)
	return scanRecord(row)
}

func (s *SQLiteStore) FindByNumber(ctx context.Context, number string) (*document.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM documents WHERE number = ? LIMIT 1`, number)
	return scanRecord(row)
}

func (s *SQLiteStore) ExistsByNumber(ctx context.Context, instituteID int64, docType, number string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM documents
		WHERE institute_id = ? AND doc_type = ? AND LOWER(number) = LOWER(TRIM(?))`,
		instituteID, docType, number,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListByInstitute(ctx context.Context, instituteID int64) ([]*document.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteColumns+` FROM documents WHERE institute_id = ? ORDER BY created_at DESC`, instituteID)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (s *SQLiteStore) List(ctx context.Context) ([]*document.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (s *SQLiteStore) UpdateHash(ctx context.Context, id int64, hash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET blockchain_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*document.Record, error) {
	var rec document.Record
	var number, examName sql.NullString
	err := row.Scan(&rec.ID, &rec.InstituteID, &rec.DocType, &rec.Name, &number, &examName,
		&rec.IssueDate, &rec.BlockchainHash, &rec.Status, &rec.FilePath, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Number = number.String
	rec.ExamName = examName.String
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]*document.Record, error) {
	defer func() { _ = rows.Close() }()
	var out []*document.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
