package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	_ "modernc.org/sqlite"

	"taskly/models"
)

// Documents are kept as BSON blobs so the stored shape matches Mongo's,
// with email lifted into its own column for lookups. No unique index:
// duplicate owners are possible, as with the Mongo collection.
const createDocuments = `CREATE TABLE IF NOT EXISTS documents (
    doc_id TEXT PRIMARY KEY,
    email TEXT,
    body BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_email ON documents (email);`

type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createDocuments); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Find(ctx context.Context, email string) ([]models.TaskDocument, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT body FROM documents WHERE email = ? ORDER BY rowid", email)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", email, err)
	}
	defer rows.Close()

	var docs []models.TaskDocument
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var doc models.TaskDocument
		if err := bson.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLite) FindOne(ctx context.Context, email string) (*models.TaskDocument, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE email = ? ORDER BY rowid LIMIT 1", email,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", email, err)
	}

	var doc models.TaskDocument
	if err := bson.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func (s *SQLite) InsertOne(ctx context.Context, doc *models.TaskDocument) (primitive.ObjectID, error) {
	id := doc.ID
	if id.IsZero() {
		id = primitive.NewObjectID()
	}
	raw, err := toM(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	raw["_id"] = id

	body, err := bson.Marshal(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("encode document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (doc_id, email, body) VALUES (?, ?, ?)",
		id.Hex(), doc.Email, body,
	)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert %s: %w", doc.Email, err)
	}
	return id, nil
}

func (s *SQLite) UpdateOne(ctx context.Context, email string, set bson.M) error {
	return s.rewrite(ctx, email, func(doc bson.M) (bson.M, error) {
		if err := applySet(doc, set); err != nil {
			return nil, err
		}
		return doc, nil
	})
}

func (s *SQLite) ReplaceOne(ctx context.Context, email string, replacement bson.M) error {
	return s.rewrite(ctx, email, func(doc bson.M) (bson.M, error) {
		return withIdentity(replacement, doc["_id"])
	})
}

// rewrite loads the first document for email, transforms it and writes it
// back inside one transaction.
func (s *SQLite) rewrite(ctx context.Context, email string, fn func(bson.M) (bson.M, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var docID string
	var body []byte
	err = tx.QueryRowContext(ctx,
		"SELECT doc_id, body FROM documents WHERE email = ? ORDER BY rowid LIMIT 1", email,
	).Scan(&docID, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoDocument
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", email, err)
	}

	var doc bson.M
	if err := bson.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	doc, err = fn(doc)
	if err != nil {
		return err
	}
	updated, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	var newEmail sql.NullString
	if e, ok := emailOf(doc); ok {
		newEmail = sql.NullString{String: e, Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE documents SET email = ?, body = ? WHERE doc_id = ?",
		newEmail, updated, docID,
	); err != nil {
		return fmt.Errorf("write %s: %w", email, err)
	}
	return tx.Commit()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close(ctx context.Context) error {
	return s.db.Close()
}
