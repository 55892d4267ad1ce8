// Package loam persists traces as documents in a Loam repository: plain
// markdown files with frontmatter, optionally version-controlled. A journal
// directory stays readable with nothing but a text editor, and with
// versioning enabled every recorded run becomes a commit.
package loam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/trace"
)

// TraceMetadata is the frontmatter stored with each journaled trace. The
// full step log lives in the document body as JSON; the metadata carries
// just enough to list and sort entries without parsing bodies.
type TraceMetadata struct {
	ID        string `json:"id" mapstructure:"id"`
	Label     string `json:"label" mapstructure:"label"`
	CreatedAt string `json:"created_at" mapstructure:"created_at"`
	Result    string `json:"result" mapstructure:"result"`
	Steps     int    `json:"steps" mapstructure:"steps"`
}

// Journal implements ports.TraceStore on a Loam repository.
type Journal struct {
	dir       string
	raw       core.Repository
	repo      *loam.TypedRepository[TraceMetadata]
	versioned bool
}

type Option func(*Journal)

// WithVersioning enables git history for the journal directory. Off by
// default: a plain directory of markdown files.
func WithVersioning(enabled bool) Option {
	return func(j *Journal) {
		j.versioned = enabled
	}
}

// Open initializes (or reopens) a journal in dir.
func Open(dir string, opts ...Option) (*Journal, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid journal path: %w", err)
	}

	j := &Journal{dir: abs}
	for _, opt := range opts {
		opt(j)
	}

	repo, err := loam.Init(abs, loam.WithVersioning(j.versioned))
	if err != nil {
		return nil, fmt.Errorf("failed to init loam journal: %w", err)
	}

	j.raw = repo
	j.repo = loam.NewTypedRepository[TraceMetadata](repo)
	return j, nil
}

// Dir returns the journal directory.
func (j *Journal) Dir() string {
	return j.dir
}

func (j *Journal) docID(id string) string {
	return id + ".md"
}

func (j *Journal) docPath(id string) string {
	return filepath.Join(j.dir, j.docID(id))
}

// Save journals the trace as a markdown document: summary frontmatter, the
// full step log as indented JSON in the body. With versioning enabled the
// write is committed.
func (j *Journal) Save(ctx context.Context, tr *trace.Trace) error {
	body, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}

	svc := core.NewService(j.raw)
	tx, err := svc.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin journal transaction: %w", err)
	}

	err = tx.Save(ctx, core.Document{
		ID:      j.docID(tr.ID),
		Content: string(body),
		Metadata: core.Metadata{
			"id":         tr.ID,
			"label":      tr.Label,
			"created_at": tr.CreatedAt.Format(time.RFC3339Nano),
			"result":     tr.Result,
			"steps":      len(tr.Steps),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to journal trace %s: %w", tr.ID, err)
	}

	if err := tx.Commit(ctx, "journal trace "+tr.ID); err != nil {
		return fmt.Errorf("failed to commit journal entry: %w", err)
	}
	return nil
}

// Load reads a journaled trace back from its document body.
func (j *Journal) Load(ctx context.Context, id string) (*trace.Trace, error) {
	if _, err := os.Stat(j.docPath(id)); errors.Is(err, fs.ErrNotExist) {
		return nil, ports.ErrTraceNotFound
	}

	doc, err := j.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	var tr trace.Trace
	if err := json.Unmarshal([]byte(doc.Content), &tr); err != nil {
		return nil, fmt.Errorf("corrupt journal entry %s: %w", id, err)
	}
	return &tr, nil
}

// List returns journaled trace ids, oldest first per their frontmatter.
func (j *Journal) List(ctx context.Context) ([]string, error) {
	docs, err := j.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	type entry struct {
		id string
		at time.Time
	}
	entries := make([]entry, 0, len(docs))
	for _, doc := range docs {
		id := doc.Data.ID
		if id == "" {
			id = trimExtension(doc.ID)
		}
		// Unparseable timestamps sort first rather than failing the listing.
		at, _ := time.Parse(time.RFC3339Nano, doc.Data.CreatedAt)
		entries = append(entries, entry{id: id, at: at})
	}

	sort.Slice(entries, func(i, k int) bool {
		if !entries[i].at.Equal(entries[k].at) {
			return entries[i].at.Before(entries[k].at)
		}
		return entries[i].id < entries[k].id
	})

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids, nil
}

// Delete removes the document file. With versioning enabled the removal
// shows up as an uncommitted change in the journal's git history.
func (j *Journal) Delete(ctx context.Context, id string) error {
	err := os.Remove(j.docPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext == "" {
		return id
	}
	return id[:len(id)-len(ext)]
}
