package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type dialect struct {
	schema    string
	get       string
	getLocked string
	list      string
	insert    string
	upsert    string
	update    string
	delete    string
}

var postgresDialect = dialect{
	schema: `
	CREATE TABLE IF NOT EXISTS documents (
		collection  TEXT NOT NULL,
		id          TEXT NOT NULL,
		body        JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)`,
	get:       `SELECT body FROM documents WHERE collection = $1 AND id = $2`,
	getLocked: `SELECT body FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
	list:      `SELECT id, body FROM documents WHERE collection = $1 ORDER BY id`,
	insert: `
		INSERT INTO documents (collection, id, body)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO NOTHING`,
	upsert: `
		INSERT INTO documents (collection, id, body)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
	update: `UPDATE documents SET body = $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2`,
	delete: `DELETE FROM documents WHERE collection = $1 AND id = $2`,
}

var sqliteDialect = dialect{
	schema: `
	CREATE TABLE IF NOT EXISTS documents (
		collection  TEXT NOT NULL,
		id          TEXT NOT NULL,
		body        TEXT NOT NULL DEFAULT '{}',
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	)`,
	get:       `SELECT body FROM documents WHERE collection = ? AND id = ?`,
	getLocked: `SELECT body FROM documents WHERE collection = ? AND id = ?`,
	list:      `SELECT id, body FROM documents WHERE collection = ? ORDER BY id`,
	insert: `
		INSERT INTO documents (collection, id, body)
		VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO NOTHING`,
	upsert: `
		INSERT INTO documents (collection, id, body)
		VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`,
	update: `UPDATE documents SET body = ?, updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND id = ?`,
	delete: `DELETE FROM documents WHERE collection = ? AND id = ?`,
}

// SQL keeps documents as JSON bodies in a single table. Field updates are a
// read-modify-write inside a transaction; Postgres locks the row for it,
// SQLite serialises writers on the database lock.
type SQL struct {
	db     *sql.DB
	d      dialect
	sqlite bool
}

// NewPostgres prepares the documents table on a pgx-backed *sql.DB.
func NewPostgres(ctx context.Context, db *sql.DB) (*SQL, error) {
	return newSQL(ctx, db, postgresDialect, false)
}

// NewSQLite prepares the documents table on a go-sqlite3 *sql.DB.
func NewSQLite(ctx context.Context, db *sql.DB) (*SQL, error) {
	return newSQL(ctx, db, sqliteDialect, true)
}

func newSQL(ctx context.Context, db *sql.DB, d dialect, sqlite bool) (*SQL, error) {
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &SQL{db: db, d: d, sqlite: sqlite}, nil
}

func (s *SQL) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	if err := s.db.QueryRowContext(ctx, s.d.get, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeBody(raw, id)
}

func (s *SQL) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, s.d.list, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		doc, err := decodeBody(raw, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQL) Create(ctx context.Context, collection string, doc Document) (string, error) {
	id := doc.ID()
	if id == "" {
		id = uuid.NewString()
	}
	raw, err := encodeBody(doc)
	if err != nil {
		return "", err
	}
	res, err := s.db.ExecContext(ctx, s.d.insert, collection, id, raw)
	if err != nil {
		return "", err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", ErrExists
	}
	return id, nil
}

func (s *SQL) Set(ctx context.Context, collection, id string, doc Document) error {
	raw, err := encodeBody(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.d.upsert, collection, id, raw)
	return err
}

func (s *SQL) Update(ctx context.Context, collection, id string, fields ...Field) error {
	if err := ValidatePaths(fields...); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	if err := tx.QueryRowContext(ctx, s.d.getLocked, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	if err := Apply(doc, fields...); err != nil {
		return err
	}
	next, err := encodeBody(doc)
	if err != nil {
		return err
	}
	args := []any{collection, id, next}
	if s.sqlite {
		args = []any{next, collection, id}
	}
	if _, err := tx.ExecContext(ctx, s.d.update, args...); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQL) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx, s.d.delete, collection, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeBody(doc Document) (string, error) {
	b, err := body(doc)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

func decodeBody(raw []byte, id string) (Document, error) {
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return withID(doc, id), nil
}
