package legacy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLiteStore persists legacy records in the shared sqlite database. DocData
// is stored as a JSON column.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	query := `
	CREATE TABLE IF NOT EXISTS legacy_documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uin TEXT NOT NULL UNIQUE COLLATE NOCASE,
		student_name TEXT NOT NULL,
		doc_type TEXT NOT NULL,
		institution TEXT NOT NULL,
		doc_data TEXT NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'pending_review',
		cert_id TEXT NOT NULL DEFAULT '',
		blockchain_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	if _, err := s.db.ExecContext(context.Background(), query); err != nil {
		return nil, err
	}
	return s, nil
}

const legacyColumns = `id, uin, student_name, doc_type, institution, doc_data, status, cert_id, blockchain_hash, created_at, updated_at`

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	docData, err := json.Marshal(rec.DocData)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO legacy_documents (uin, student_name, doc_type, institution, doc_data, status, cert_id, blockchain_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UIN, rec.StudentName, rec.DocType, rec.Institution, string(docData),
		rec.Status, rec.CertID, rec.BlockchainHash, rec.CreatedAt, rec.UpdatedAt)
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
	row := s.db.QueryRowContext(ctx, `SELECT `+legacyColumns+` FROM legacy_documents WHERE id = ?`, id)
	return scanLegacy(row)
}

func (s *SQLiteStore) FindByUIN(ctx context.Context, uin string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+legacyColumns+` FROM legacy_documents WHERE uin = TRIM(?) COLLATE NOCASE`, uin)
	return scanLegacy(row)
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+legacyColumns+` FROM legacy_documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*Record
	for rows.Next() {
		rec, err := scanLegacy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Update(ctx context.Context, rec *Record) error {
	rec.UpdatedAt = time.Now().UTC()
	docData, err := json.Marshal(rec.DocData)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE legacy_documents
		SET uin = ?, student_name = ?, doc_type = ?, institution = ?, doc_data = ?,
		    status = ?, cert_id = ?, blockchain_hash = ?, updated_at = ?
		WHERE id = ?`,
		rec.UIN, rec.StudentName, rec.DocType, rec.Institution, string(docData),
		rec.Status, rec.CertID, rec.BlockchainHash, rec.UpdatedAt, rec.ID)
	if err != nil {
		return err
	}
	return requireLegacyRow(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM legacy_documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireLegacyRow(res)
}

type legacyScanner interface {
	Scan(dest ...any) error
}

func scanLegacy(row legacyScanner) (*Record, error) {
	var rec Record
	var docData string
	err := row.Scan(&rec.ID, &rec.UIN, &rec.StudentName, &rec.DocType, &rec.Institution,
		&docData, &rec.Status, &rec.CertID, &rec.BlockchainHash, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(docData), &rec.DocData); err != nil {
		return nil, err
	}
	return &rec, nil
}

func requireLegacyRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
