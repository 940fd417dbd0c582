package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps collections in process memory. Keys are UUIDv7 strings so
// lexical order follows insertion order, like the Firebase push ids.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Item
	verifier    TokenVerifier
}

func NewMemoryStore(verifier TokenVerifier) *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Item),
		verifier:    verifier,
	}
}

func (s *MemoryStore) Push(ctx context.Context, collection string, record any, token string) (string, error) {
	if err := checkToken(s.verifier, token); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("store: encode %s record: %w", collection, err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.collections[collection] = append(s.collections[collection], Item{Key: id.String(), Value: raw})
	s.mu.Unlock()
	return id.String(), nil
}

func (s *MemoryStore) Get(ctx context.Context, collection string, token string) (Snapshot, error) {
	if err := checkToken(s.verifier, token); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.collections[collection]
	snap := make(Snapshot, len(items))
	copy(snap, items)
	return snap, nil
}

// Seed stores record under a fixed key, bypassing token checks.
func (s *MemoryStore) Seed(collection, key string, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.collections[collection] = append(s.collections[collection], Item{Key: key, Value: raw})
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
