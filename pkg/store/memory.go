package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/benchdef/pkg/framework"
)

// MemoryStore is an in-memory snapshot store for development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
	order []string // IDs in publish order, oldest first
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*Snapshot)}
}

func (s *MemoryStore) Publish(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.snaps[snap.ID]; exists {
		return ErrDuplicateID
	}
	copied := *snap
	copied.Definitions = cloneDefinitions(snap.Definitions)
	s.snaps[snap.ID] = &copied
	s.order = append(s.order, snap.ID)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snaps[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *snap
	copied.Definitions = cloneDefinitions(snap.Definitions)
	return &copied, nil
}

func (s *MemoryStore) Latest(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	id := ""
	if len(s.order) > 0 {
		id = s.order[len(s.order)-1]
	}
	s.mu.RUnlock()

	if id == "" {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]Info, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(infos) == limit {
			break
		}
		infos = append(infos, s.snaps[s.order[i]].Info())
	}
	return infos, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snaps[id]; !ok {
		return ErrNotFound
	}
	delete(s.snaps, id)
	s.order = slices.DeleteFunc(s.order, func(existing string) bool { return existing == id })
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func cloneDefinitions(defs []framework.Definition) []framework.Definition {
	out := make([]framework.Definition, len(defs))
	for i, d := range defs {
		out[i] = d.Clone()
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
