package session

import (
	"context"
	"sync"

	"github.com/bytedance/sonic"
)

// Store is the durable session store. Load returns (nil, nil) for an unknown
// session. The engine reads before and writes after every step, so a crash
// between steps loses at most the in-flight step.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions as serialized JSON in memory. Serializing on
// every round trip keeps its behavior identical to a real durable store, which
// matters for resumability guarantees and for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*State, error) {
	m.mu.RLock()
	data, ok := m.states[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var state State
	if err := sonic.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *MemoryStore) Save(ctx context.Context, state *State) error {
	data, err := sonic.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.states[state.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.states, id)
	m.mu.Unlock()
	return nil
}
