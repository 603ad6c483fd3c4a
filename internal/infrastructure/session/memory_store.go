package session

import (
	"context"
	"sync"
)

// MemoryStore implementa Store em memória, para desenvolvimento sem Redis
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Authorisation
}

// NewMemoryStore cria um MemoryStore vazio
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Authorisation)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Authorisation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	auth, ok := m.sessions[id]
	if !ok || auth.IsExpired() {
		return nil, ErrNotFound
	}
	return &auth, nil
}

func (m *MemoryStore) Save(ctx context.Context, id string, auth *Authorisation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = *auth
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// MemoryFlashBag implementa FlashBag em memória
type MemoryFlashBag struct {
	mu      sync.Mutex
	flashes map[string][]Flash
}

// NewMemoryFlashBag cria um MemoryFlashBag vazio
func NewMemoryFlashBag() *MemoryFlashBag {
	return &MemoryFlashBag{flashes: make(map[string][]Flash)}
}

func (b *MemoryFlashBag) Add(ctx context.Context, subject string, flash Flash) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.flashes[subject] = append(b.flashes[subject], flash)
	return nil
}

func (b *MemoryFlashBag) Pop(ctx context.Context, subject string) ([]Flash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	flashes := b.flashes[subject]
	delete(b.flashes, subject)
	if flashes == nil {
		flashes = []Flash{}
	}
	return flashes, nil
}
