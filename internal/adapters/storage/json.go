// Package storage provides knowledge and quota persistence adapters.
// Adapters implementing ports.KnowledgeStore and ports.QuotaStore.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
)

// JSONKnowledgeStore keeps the knowledge base in a single JSON document:
// {"questions": [{"question": ..., "answer": ...}, ...]}.
type JSONKnowledgeStore struct {
	path string
}

// NewJSONKnowledgeStore creates a store backed by path.
func NewJSONKnowledgeStore(path string) *JSONKnowledgeStore {
	if path == "" {
		path = "knowledge_base.json"
	}
	return &JSONKnowledgeStore{path: path}
}

// Path returns the document location.
func (s *JSONKnowledgeStore) Path() string { return s.path }

// Load reads the document; a missing file is an empty knowledge base.
func (s *JSONKnowledgeStore) Load(ctx context.Context) (*entities.KnowledgeBase, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entities.NewKnowledgeBase(), nil
	}
	if err != nil {
		return nil, &entities.PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	var kb entities.KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return nil, malformed(s.path, err)
	}
	if kb.Questions == nil {
		kb.Questions = []entities.Fact{}
	}
	return &kb, nil
}

// Save rewrites the whole document.
func (s *JSONKnowledgeStore) Save(ctx context.Context, kb *entities.KnowledgeBase) error {
	if kb.Questions == nil {
		kb = entities.NewKnowledgeBase()
	}
	data, err := encodeJSON(kb)
	if err != nil {
		return &entities.PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return &entities.PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// JSONQuotaStore keeps the fallback counter in {"query_count": n}.
type JSONQuotaStore struct {
	path string
}

// NewJSONQuotaStore creates a store backed by path.
func NewJSONQuotaStore(path string) *JSONQuotaStore {
	if path == "" {
		path = "query_count.json"
	}
	return &JSONQuotaStore{path: path}
}

// Path returns the document location.
func (s *JSONQuotaStore) Path() string { return s.path }

// Load reads the counter; a missing file or field is zero.
func (s *JSONQuotaStore) Load(ctx context.Context) (entities.QuotaState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entities.QuotaState{}, nil
	}
	if err != nil {
		return entities.QuotaState{}, &entities.PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	var state entities.QuotaState
	if err := json.Unmarshal(data, &state); err != nil {
		return entities.QuotaState{}, malformed(s.path, err)
	}
	if state.QueryCount < 0 {
		return entities.QuotaState{}, malformed(s.path, fmt.Errorf("negative query_count %d", state.QueryCount))
	}
	return state, nil
}

// Save rewrites the counter document. The stored value never decreases; an
// unreadable document is overwritten.
func (s *JSONQuotaStore) Save(ctx context.Context, state entities.QuotaState) error {
	if current, err := s.Load(ctx); err == nil && current.QueryCount > state.QueryCount {
		return nil
	}
	data, err := encodeJSON(state)
	if err != nil {
		return &entities.PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return &entities.PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

func malformed(path string, err error) error {
	return &entities.PersistenceError{
		Op:   "load",
		Path: path,
		Err:  fmt.Errorf("%w: %v", entities.ErrMalformedDocument, err),
	}
}

// encodeJSON pretty-prints v with two-space indentation, leaving non-ASCII
// and HTML characters unescaped.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// over path, so readers see either the old or the new document.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
