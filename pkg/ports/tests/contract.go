package tests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/trace"
)

// SampleTrace builds a small but realistic trace for contract runs.
func SampleTrace(id string, at time.Time) *trace.Trace {
	return &trace.Trace{
		ID:        id,
		Label:     "(1 + 2)",
		CreatedAt: at.UTC(),
		Result:    "3",
		Steps: []trace.Step{
			{N: 0, Op: "expand", Work: []string{"collapse (_ + _)", "expand 1", "expand 2"}, Results: []string{}},
			{N: 1, Op: "expand", Work: []string{"collapse (_ + _)", "expand 1", "collapse 2"}, Results: []string{}},
			{N: 2, Op: "collapse", Work: []string{"collapse (_ + _)", "expand 1"}, Results: []string{"2"}},
			{N: 3, Op: "expand", Work: []string{"collapse (_ + _)", "collapse 1"}, Results: []string{"2"}},
			{N: 4, Op: "collapse", Work: []string{"collapse (_ + _)"}, Results: []string{"2", "1"}},
			{N: 5, Op: "collapse", Work: []string{}, Results: []string{"3"}},
		},
	}
}

// RunTraceStoreContract verifies that a TraceStore implementation adheres to
// the interface contract. Every adapter runs this suite against a fresh
// store.
func RunTraceStoreContract(t *testing.T, store ports.TraceStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		want := SampleTrace(uuid.NewString(), time.Now())

		require.NoError(t, store.Save(ctx, want), "Save should not return error")

		got, err := store.Load(ctx, want.ID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Label, got.Label)
		assert.Equal(t, want.Result, got.Result)
		assert.Equal(t, want.Steps, got.Steps)
		assert.True(t, got.CreatedAt.Equal(want.CreatedAt),
			"CreatedAt drifted: got %v, want %v", got.CreatedAt, want.CreatedAt)
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+uuid.NewString())
		assert.ErrorIs(t, err, ports.ErrTraceNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		tr := SampleTrace(uuid.NewString(), time.Now())
		require.NoError(t, store.Save(ctx, tr))

		tr.Label = "(1 + 2) overwritten"
		require.NoError(t, store.Save(ctx, tr))

		got, err := store.Load(ctx, tr.ID)
		require.NoError(t, err)
		assert.Equal(t, "(1 + 2) overwritten", got.Label)
	})

	t.Run("Delete", func(t *testing.T) {
		tr := SampleTrace(uuid.NewString(), time.Now())
		require.NoError(t, store.Save(ctx, tr))

		require.NoError(t, store.Delete(ctx, tr.ID), "Delete should not return error")

		_, err := store.Load(ctx, tr.ID)
		assert.ErrorIs(t, err, ports.ErrTraceNotFound, "Load after Delete should report not found")

		assert.NoError(t, store.Delete(ctx, tr.ID), "Delete of unknown id should be a no-op")
	})

	t.Run("ListOldestFirst", func(t *testing.T) {
		base := time.Now()
		older := SampleTrace(uuid.NewString(), base.Add(-2*time.Second))
		newer := SampleTrace(uuid.NewString(), base)

		// Save out of chronological order on purpose.
		require.NoError(t, store.Save(ctx, newer))
		require.NoError(t, store.Save(ctx, older))
		defer func() {
			_ = store.Delete(ctx, older.ID)
			_ = store.Delete(ctx, newer.ID)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, older.ID)
		assert.Contains(t, ids, newer.ID)

		if indexOf(ids, older.ID) > indexOf(ids, newer.ID) {
			t.Errorf("expected %s before %s in %v", older.ID, newer.ID, ids)
		}
	})
}

func indexOf(ids []string, id string) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}
