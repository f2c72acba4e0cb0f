package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"veridoc/internal/document"
)

// PostgresStore is the production DocumentStore.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open handle and migrates the schema.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		institute_id BIGINT NOT NULL,
		doc_type TEXT NOT NULL,
		name TEXT NOT NULL,
		number TEXT,
		exam_name TEXT,
		issue_date TEXT NOT NULL,
		blockchain_hash TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		file_path TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS documents_institute_idx ON documents (institute_id, doc_type);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *PostgresStore) Save(ctx context.Context, rec *document.Record) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	return s.db.QueryRowContext(ctx, `
		INSERT INTO documents (institute_id, doc_type, name, number, exam_name, issue_date, blockchain_hash, status, file_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		rec.InstituteID, rec.DocType, rec.Name, rec.Number, rec.ExamName, rec.IssueDate,
		rec.BlockchainHash, rec.Status, rec.FilePath, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*document.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, institute_id, doc_type, name, number, exam_name, issue_date, blockchain_hash, status, file_path, created_at, updated_at
		FROM documents WHERE id = $1`, id)
	return scanRecord(row)
}

func (s *PostgresStore) FindByNumber(ctx context.Context, number string) (*document.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, institute_id, doc_type, name, number, exam_name, issue_date, blockchain_hash, status, file_path, created_at, updated_at
		FROM documents WHERE number = $1 LIMIT 1`, number)
	return scanRecord(row)
}

func (s *PostgresStore) ExistsByNumber(ctx context.Context, instituteID int64, docType, number string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM documents
		WHERE institute_id = $1 AND doc_type = $2 AND LOWER(number) = LOWER(TRIM($3))`,
		instituteID, docType, number,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *PostgresStore) ListByInstitute(ctx context.Context, instituteID int64) ([]*document.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, institute_id, doc_type, name, number, exam_name, issue_date, blockchain_hash, status, file_path, created_at, updated_at
		FROM documents WHERE institute_id = $1 ORDER BY created_at DESC`, instituteID)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (s *PostgresStore) List(ctx context.Context) ([]*document.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, institute_id, doc_type, name, number, exam_name, issue_date, blockchain_hash, status, file_path, created_at, updated_at
		FROM documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (s *PostgresStore) UpdateHash(ctx context.Context, id int64, hash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET blockchain_hash = $1, updated_at = $2 WHERE id = $3`,
		hash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
