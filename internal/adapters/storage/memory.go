package storage

import (
	"context"
	"sync"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
)

// MemoryStore keeps facts and the quota counter in process memory. Nothing
// survives a restart; it backs the "memory" backend and throwaway sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	kb    *entities.KnowledgeBase
	quota entities.QuotaState
}

// NewMemoryStore creates a store seeded with facts.
func NewMemoryStore(facts ...entities.Fact) *MemoryStore {
	kb := entities.NewKnowledgeBase()
	kb.Questions = append(kb.Questions, facts...)
	return &MemoryStore{kb: kb}
}

// Knowledge returns the ports.KnowledgeStore view of the store.
func (s *MemoryStore) Knowledge() *MemoryKnowledgeStore {
	return &MemoryKnowledgeStore{s: s}
}

// Quota returns the ports.QuotaStore view of the store.
func (s *MemoryStore) Quota() *MemoryQuotaStore {
	return &MemoryQuotaStore{s: s}
}

// MemoryKnowledgeStore implements ports.KnowledgeStore.
type MemoryKnowledgeStore struct {
	s *MemoryStore
}

// Load returns a copy of the stored knowledge base.
func (k *MemoryKnowledgeStore) Load(ctx context.Context) (*entities.KnowledgeBase, error) {
	k.s.mu.RLock()
	defer k.s.mu.RUnlock()
	return k.s.kb.Clone(), nil
}

// Save replaces the stored knowledge base with a copy of kb.
func (k *MemoryKnowledgeStore) Save(ctx context.Context, kb *entities.KnowledgeBase) error {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	k.s.kb = kb.Clone()
	return nil
}

// MemoryQuotaStore implements ports.QuotaStore.
type MemoryQuotaStore struct {
	s *MemoryStore
}

// Load returns the counter.
func (q *MemoryQuotaStore) Load(ctx context.Context) (entities.QuotaState, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	return q.s.quota, nil
}

// Save stores the counter. The stored value never decreases.
func (q *MemoryQuotaStore) Save(ctx context.Context, state entities.QuotaState) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if state.QueryCount > q.s.quota.QueryCount {
		q.s.quota = state
	}
	return nil
}
