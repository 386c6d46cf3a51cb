// Package localstore is the durable fallback for budget documents whose
// remote write failed. Documents are kept in a single SQLite key-value
// table keyed budget_{productID} and read back opportunistically so local
// edits are never silently lost.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/compass/internal/domain"
	_ "modernc.org/sqlite"
)

// ErrNotFound indicates no pending document exists for the key.
var ErrNotFound = errors.New("no locally saved document")

const schema = `
CREATE TABLE IF NOT EXISTS pending_documents (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	saved_at   TEXT NOT NULL
);`

// Store persists serialized budget documents on the local machine.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the fallback store at the given path.
// If path is ":memory:", uses an in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func budgetKey(productID string) string {
	return "budget_" + productID
}

// SaveBudget stores the document under budget_{productID}, stamping it as a
// local-only save pending reconciliation with the server.
func (s *Store) SaveBudget(ctx context.Context, productID string, doc *domain.ProductBudgetDocument, savedAt time.Time) error {
	stamped := *doc
	stamped.SavedLocally = true
	stamped.SavedAt = &savedAt

	payload, err := json.Marshal(&stamped)
	if err != nil {
		return fmt.Errorf("serializing document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pending_documents (key, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		budgetKey(productID), string(payload), savedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

// LoadBudget returns the pending local document for a product, or
// ErrNotFound when none has been saved.
func (s *Store) LoadBudget(ctx context.Context, productID string) (*domain.ProductBudgetDocument, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM pending_documents WHERE key = ?`, budgetKey(productID)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var doc domain.ProductBudgetDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("deserializing document: %w", err)
	}
	return &doc, nil
}

// DeleteBudget removes the pending document after a successful remote
// reconciliation.
func (s *Store) DeleteBudget(ctx context.Context, productID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM pending_documents WHERE key = ?`, budgetKey(productID))
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}
