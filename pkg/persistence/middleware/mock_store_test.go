package middleware_test

import (
	"context"

	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/trace"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]*trace.Trace
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*trace.Trace),
	}
}

func (s *MockStore) Save(ctx context.Context, tr *trace.Trace) error {
	s.data[tr.ID] = tr
	return nil
}

func (s *MockStore) Load(ctx context.Context, id string) (*trace.Trace, error) {
	tr, ok := s.data[id]
	if !ok {
		return nil, ports.ErrTraceNotFound
	}
	return tr, nil
}

func (s *MockStore) Delete(ctx context.Context, id string) error {
	delete(s.data, id)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

var _ ports.TraceStore = (*MockStore)(nil)
