package ports

import (
	"context"
	"errors"

	"github.com/aretw0/espalier/pkg/trace"
)

// ErrTraceNotFound is returned by Load when no trace has the requested id.
var ErrTraceNotFound = errors.New("trace not found")

// TraceStore defines the interface for persisting recorded engine runs.
// It decouples trace producers (CLI, HTTP service) from the backend that
// keeps them.
type TraceStore interface {
	// Save persists a trace keyed by its id. Saving an existing id
	// overwrites the stored trace.
	Save(ctx context.Context, tr *trace.Trace) error

	// Load retrieves a trace by id.
	// Returns ErrTraceNotFound if the id is unknown.
	Load(ctx context.Context, id string) (*trace.Trace, error)

	// List returns the ids of stored traces, oldest first.
	List(ctx context.Context) ([]string, error)

	// Delete removes a trace. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
