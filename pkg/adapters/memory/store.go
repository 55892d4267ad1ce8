package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/trace"
)

// Store implements ports.TraceStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*trace.Trace
	mu   sync.RWMutex
}

// NewStore creates a new in-memory trace store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*trace.Trace),
	}
}

// Save keeps a deep copy of the trace so later mutations by the caller
// cannot reach the stored value.
func (s *Store) Save(ctx context.Context, tr *trace.Trace) error {
	cp := clone(tr)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[tr.ID] = cp
	return nil
}

// Load returns a copy of the stored trace.
func (s *Store) Load(ctx context.Context, id string) (*trace.Trace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tr, ok := s.data[id]
	if !ok {
		return nil, ports.ErrTraceNotFound
	}
	return clone(tr), nil
}

// List returns stored trace ids ordered by creation time, oldest first.
// Ties break on id so the order is stable.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.data[ids[i]], s.data[ids[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return ids[i] < ids[j]
	})
	return ids, nil
}

// Delete removes the trace. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func clone(tr *trace.Trace) *trace.Trace {
	cp := *tr
	cp.Steps = slices.Clone(tr.Steps)
	for i := range cp.Steps {
		cp.Steps[i].Work = slices.Clone(cp.Steps[i].Work)
		cp.Steps[i].Results = slices.Clone(cp.Steps[i].Results)
	}
	return &cp
}
