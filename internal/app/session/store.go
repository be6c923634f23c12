package session

import (
	"context"
	"sync"

	"github.com/alexedwards/scs/v2"
)

// Storage keys of the cached credential and the serialized profile.
const (
	TokenKey   = "prepcheck_token"
	ProfileKey = "prepcheck_user"
)

// Store is the persisted key-value store that backs a session.
type Store interface {
	// Get returns the value for the given key. The second return value is false
	// if the key is absent.
	Get(ctx context.Context, key string) (string, bool)
	// Put sets the value for the given key, replacing any previous value.
	Put(ctx context.Context, key, value string)
	// Remove deletes the given key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string)
}

// ScsStore implements Store on top of an scs session manager. The session
// manager's LoadAndSave middleware must wrap any handler that uses it.
type ScsStore struct {
	*scs.SessionManager
}

func NewScsStore(manager *scs.SessionManager) *ScsStore {
	return &ScsStore{manager}
}

func (s *ScsStore) Get(ctx context.Context, key string) (string, bool) {
	if !s.SessionManager.Exists(ctx, key) {
		return "", false
	}
	return s.SessionManager.GetString(ctx, key), true
}

func (s *ScsStore) Put(ctx context.Context, key, value string) {
	s.SessionManager.Put(ctx, key, value)
}

func (s *ScsStore) Remove(ctx context.Context, key string) {
	s.SessionManager.Remove(ctx, key)
}

// MemoryStore is an in-memory Store, used in tests and for single-process
// setups without a session middleware.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryStore) Put(_ context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
}

func (s *MemoryStore) Remove(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
}
