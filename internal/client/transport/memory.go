package transport

import (
	"context"
	"sync"

	"github.com/atinyakov/GophDeck/internal/client/identity"
)

// Memory is an in-process Transport. The Fail* fields inject errors.
type Memory struct {
	mu   sync.Mutex
	docs map[identity.Identity][]byte

	FailExists error
	FailGet    error
	FailPut    error
	// Puts counts successful Put calls.
	Puts int
}

// NewMemory returns an empty in-memory transport.
func NewMemory() *Memory {
	return &Memory{docs: make(map[identity.Identity][]byte)}
}

func (m *Memory) Exists(ctx context.Context, id identity.Identity) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailExists != nil {
		return false, m.FailExists
	}
	_, ok := m.docs[id]
	return ok, nil
}

func (m *Memory) Get(ctx context.Context, id identity.Identity) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet != nil {
		return nil, m.FailGet
	}
	data, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Put(ctx context.Context, id identity.Identity, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut != nil {
		return m.FailPut
	}
	if m.docs == nil {
		m.docs = make(map[identity.Identity][]byte)
	}
	m.docs[id] = append([]byte{}, data...)
	m.Puts++
	return nil
}

// Document returns the stored bytes for id and whether they exist.
func (m *Memory) Document(id identity.Identity) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[id]
	return data, ok
}
