package cli

import (
	"context"
	"fmt"
	"io"
	"os"
)

// TraceOptions contains all the configuration for the trace subcommands.
type TraceOptions struct {
	ID    string // trace show only
	JSON  bool
	Plain bool
	Debug bool
	Store StoreOptions
	Out   io.Writer
}

// RunTraceList prints the ids of every stored trace, oldest first.
func RunTraceList(ctx context.Context, opts TraceOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := createLogger(opts.Debug)

	store, closeStore, err := NewTraceStore(opts.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing traces: %w", err)
	}

	if opts.JSON {
		if ids == nil {
			ids = []string{}
		}
		return printJSON(opts.Out, map[string][]string{"traces": ids})
	}
	if len(ids) == 0 {
		printSystemMessage(opts.Out, "No traces stored.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(opts.Out, id)
	}
	return nil
}

// RunTraceShow replays one stored trace.
func RunTraceShow(ctx context.Context, opts TraceOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := createLogger(opts.Debug)

	store, closeStore, err := NewTraceStore(opts.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	tr, err := store.Load(ctx, opts.ID)
	if err != nil {
		return fmt.Errorf("loading trace %s: %w", opts.ID, err)
	}

	if opts.JSON {
		return printJSON(opts.Out, tr)
	}
	return replayTrace(opts.Out, tr, opts.Plain)
}
