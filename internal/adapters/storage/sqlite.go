// Package storage - sqlite.go keeps facts and the quota counter in one SQLite
// database, as an alternative to the JSON documents.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
)

// SQLiteStore owns the database. Use Knowledge and Quota to get the port
// implementations.
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "./data/eley.db"
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, &entities.PersistenceError{Op: "load", Path: path, Err: fmt.Errorf("initializing schema: %w", err)}
	}
	return store, nil
}

// initSchema creates the necessary tables.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS facts (
		position INTEGER PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_facts_question ON facts(question);
	CREATE TABLE IF NOT EXISTS quota (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		query_count INTEGER NOT NULL CHECK (query_count >= 0)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Knowledge returns the ports.KnowledgeStore view of the database.
func (s *SQLiteStore) Knowledge() *SQLiteKnowledgeStore {
	return &SQLiteKnowledgeStore{s: s}
}

// Quota returns the ports.QuotaStore view of the database.
func (s *SQLiteStore) Quota() *SQLiteQuotaStore {
	return &SQLiteQuotaStore{s: s}
}

// factCount returns the number of stored facts.
func (s *SQLiteStore) factCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM facts").Scan(&count)
	return count, err
}

// SQLiteKnowledgeStore implements ports.KnowledgeStore.
type SQLiteKnowledgeStore struct {
	s *SQLiteStore
}

// Load reads every fact in store order.
func (k *SQLiteKnowledgeStore) Load(ctx context.Context) (*entities.KnowledgeBase, error) {
	k.s.mu.RLock()
	defer k.s.mu.RUnlock()

	rows, err := k.s.db.QueryContext(ctx, `SELECT question, answer FROM facts ORDER BY position`)
	if err != nil {
		return nil, &entities.PersistenceError{Op: "load", Path: k.s.path, Err: fmt.Errorf("querying facts: %w", err)}
	}
	defer rows.Close()

	kb := entities.NewKnowledgeBase()
	for rows.Next() {
		var f entities.Fact
		if err := rows.Scan(&f.Question, &f.Answer); err != nil {
			return nil, &entities.PersistenceError{Op: "load", Path: k.s.path, Err: fmt.Errorf("scanning row: %w", err)}
		}
		kb.Questions = append(kb.Questions, f)
	}
	if err := rows.Err(); err != nil {
		return nil, &entities.PersistenceError{Op: "load", Path: k.s.path, Err: err}
	}
	return kb, nil
}

// Save replaces all facts in one transaction.
func (k *SQLiteKnowledgeStore) Save(ctx context.Context, kb *entities.KnowledgeBase) error {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()

	if err := k.save(ctx, kb); err != nil {
		return &entities.PersistenceError{Op: "save", Path: k.s.path, Err: err}
	}
	return nil
}

func (k *SQLiteKnowledgeStore) save(ctx context.Context, kb *entities.KnowledgeBase) error {
	tx, err := k.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM facts"); err != nil {
		return fmt.Errorf("clearing facts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO facts (position, question, answer) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, f := range kb.Questions {
		if _, err := stmt.ExecContext(ctx, i, f.Question, f.Answer); err != nil {
			return fmt.Errorf("inserting fact: %w", err)
		}
	}

	return tx.Commit()
}

// SQLiteQuotaStore implements ports.QuotaStore.
type SQLiteQuotaStore struct {
	s *SQLiteStore
}

// Load reads the counter; no row means zero.
func (q *SQLiteQuotaStore) Load(ctx context.Context) (entities.QuotaState, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	var state entities.QuotaState
	err := q.s.db.QueryRowContext(ctx, "SELECT query_count FROM quota WHERE id = 1").Scan(&state.QueryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.QuotaState{}, nil
	}
	if err != nil {
		return entities.QuotaState{}, &entities.PersistenceError{Op: "load", Path: q.s.path, Err: err}
	}
	return state, nil
}

// Save stores the counter. The stored value never decreases.
func (q *SQLiteQuotaStore) Save(ctx context.Context, state entities.QuotaState) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	_, err := q.s.db.ExecContext(ctx, `
		INSERT INTO quota (id, query_count) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET query_count = MAX(query_count, excluded.query_count)
	`, state.QueryCount)
	if err != nil {
		return &entities.PersistenceError{Op: "save", Path: q.s.path, Err: err}
	}
	return nil
}
