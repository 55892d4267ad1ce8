package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunWatch evaluates the document in development mode, re-running on every
// file change until a signal stops it.
func RunWatch(opts EvalOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := createLogger(opts.Debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save,
	// which silently drops watches registered on the file itself.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	logger.Info("starting watcher", "path", abs)
	printSystemMessage(opts.Out, "Watching '%s'.", opts.Path)

	for {
		// A broken intermediate save should not kill the watcher.
		if err := RunEval(sigCtx, opts); err != nil && !isInterrupted(err) {
			fmt.Fprintf(opts.Out, "Error: %v\n", err)
		}
		printSystemMessage(opts.Out, "Waiting for changes...")

		if !waitForChange(sigCtx, watcher, abs, opts.Out) {
			printSystemMessage(opts.Out, "Watcher stopped.")
			return nil
		}
		logger.Info("watcher restarting")
	}
}

// waitForChange blocks until the watched file changes. It reports false when
// the context was cancelled or the watcher died.
func waitForChange(ctx *SignalContext, watcher *fsnotify.Watcher, abs string, out io.Writer) bool {
	for {
		select {
		case <-ctx.Done():
			return false

		case event, ok := <-watcher.Events:
			if !ok {
				return false
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			printSystemMessage(out, "Change detected in '%s'.", filepath.Base(event.Name))
			// Delay slightly to ensure the file system is stable.
			time.Sleep(100 * time.Millisecond)
			drainEvents(watcher)
			return true

		case err, ok := <-watcher.Errors:
			if !ok {
				return false
			}
			fmt.Fprintf(out, "Watch error: %v\n", err)
		}
	}
}

// drainEvents discards the event burst an editor save produces so one save
// triggers one rerun.
func drainEvents(watcher *fsnotify.Watcher) {
	for {
		select {
		case <-watcher.Events:
		default:
			return
		}
	}
}
