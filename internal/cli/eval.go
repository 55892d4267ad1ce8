package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/arith"
	"github.com/aretw0/espalier/pkg/observability"
	"github.com/aretw0/espalier/pkg/trace"
)

// EvalOptions contains all the configuration for the eval command.
type EvalOptions struct {
	Path  string // document path, "-" for stdin
	JSON  bool
	Trace bool
	Plain bool
	Debug bool
	Watch bool
	Store StoreOptions
	Out   io.Writer
}

// evalResult is the JSON shape printed in --json mode.
type evalResult struct {
	Result   int64  `json:"result"`
	Rendered string `json:"rendered"`
	Steps    int    `json:"steps"`
	TraceID  string `json:"trace_id,omitempty"`
}

// Execute handles the eval command logic, dispatching to watch or single-run
// mode.
func Execute(opts EvalOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Watch {
		if opts.Path == "-" {
			return fmt.Errorf("--watch needs a file to watch, not stdin")
		}
		return RunWatch(opts)
	}
	return handleExecutionError(RunEval(context.Background(), opts))
}

// RunEval evaluates one expression document and prints the result.
func RunEval(ctx context.Context, opts EvalOptions) error {
	logger := createLogger(opts.Debug)

	data, err := readDocument(opts.Path)
	if err != nil {
		return err
	}

	tree, err := arith.DecodeYAML(data)
	if err != nil {
		return err
	}
	rendered := tree.String()
	logger.Debug("document decoded", "rendered", rendered)

	// An in-memory store dies with the process, so only explicit backends
	// (or a local journal directory) make a run worth persisting.
	persist := wantsPersistence(opts.Store)

	out := evalResult{Rendered: rendered}
	agg := observability.NewAggregator[*arith.Tree, arith.Expr[espalier.Hole], int64]()

	var recorded *trace.Trace
	if opts.Trace || persist {
		rec := arith.NewEvalRecorder(rendered)
		out.Result = arith.Eval(tree, rec.Hooks(), agg.Hooks())
		recorded = rec.Finish(out.Result)
	} else {
		out.Result = arith.Eval(tree, agg.Hooks())
	}

	sum := agg.Summary()
	out.Steps = sum.Steps
	logger.Debug("run finished",
		"steps", sum.Steps,
		"max_work", sum.MaxWork,
		"max_results", sum.MaxResults,
		"elapsed", sum.Elapsed,
	)

	if persist {
		store, closeStore, err := NewTraceStore(opts.Store, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := store.Save(ctx, recorded); err != nil {
			return fmt.Errorf("storing trace: %w", err)
		}
		out.TraceID = recorded.ID
	}

	if opts.JSON {
		return printJSON(opts.Out, out)
	}

	if opts.Trace {
		if err := replayTrace(opts.Out, recorded, opts.Plain); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(opts.Out, "%s = %d\n", out.Rendered, out.Result)
	}
	if out.TraceID != "" {
		printSystemMessage(opts.Out, "Trace '%s' stored.", out.TraceID)
	}
	return nil
}

// wantsPersistence reports whether the store options resolve to a durable
// backend.
func wantsPersistence(opts StoreOptions) bool {
	if opts.RedisAddr != "" || opts.JournalDir != "" {
		return true
	}
	fi, err := os.Stat(DefaultJournalDir)
	return err == nil && fi.IsDir()
}

// replayTrace renders a recorded run, styled when the output allows it.
func replayTrace(w io.Writer, tr *trace.Trace, plain bool) error {
	if plain {
		trace.RenderPlain(w, tr)
		return nil
	}
	return trace.Render(w, tr)
}
