// Package trace records engine runs as replayable step logs.
//
// A Recorder plugs into the engine through espalier.Hooks and captures one
// Step per scheduler iteration, with both stacks rendered to text by
// per-type render functions. The resulting Trace is plain data: it
// marshals to JSON for storage and feeds the terminal replay in render.go.
package trace

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/espalier"
)

// Trace is the persisted record of one engine run.
type Trace struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Result    string    `json:"result,omitempty"`
	Steps     []Step    `json:"steps"`
}

// Step is one scheduler iteration. Work holds the pending stack top-last,
// Results the finished values bottom-first, both rendered to text.
type Step struct {
	N       int      `json:"n"`
	Op      string   `json:"op"`
	Work    []string `json:"work"`
	Results []string `json:"results"`
}

// Recorder converts engine step snapshots into a Trace.
// Attach one recorder per run; it is not safe for concurrent use.
type Recorder[Seed, FH, Out any] struct {
	tr      *Trace
	seedFn  func(Seed) string
	frameFn func(FH) string
	outFn   func(Out) string
}

// Option configures a Recorder.
type Option[Seed, FH, Out any] func(*Recorder[Seed, FH, Out])

// WithLabel names the trace, typically after the source expression.
func WithLabel[Seed, FH, Out any](label string) Option[Seed, FH, Out] {
	return func(r *Recorder[Seed, FH, Out]) {
		r.tr.Label = label
	}
}

// WithSeedRenderer overrides how pending seeds are rendered.
func WithSeedRenderer[Seed, FH, Out any](fn func(Seed) string) Option[Seed, FH, Out] {
	return func(r *Recorder[Seed, FH, Out]) {
		r.seedFn = fn
	}
}

// WithFrameRenderer overrides how parked frames are rendered.
func WithFrameRenderer[Seed, FH, Out any](fn func(FH) string) Option[Seed, FH, Out] {
	return func(r *Recorder[Seed, FH, Out]) {
		r.frameFn = fn
	}
}

// WithResultRenderer overrides how finished values are rendered.
func WithResultRenderer[Seed, FH, Out any](fn func(Out) string) Option[Seed, FH, Out] {
	return func(r *Recorder[Seed, FH, Out]) {
		r.outFn = fn
	}
}

// NewRecorder creates a recorder with a fresh trace id.
// All render functions default to fmt.Sprint.
func NewRecorder[Seed, FH, Out any](opts ...Option[Seed, FH, Out]) *Recorder[Seed, FH, Out] {
	r := &Recorder[Seed, FH, Out]{
		tr: &Trace{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC(),
		},
		seedFn:  func(s Seed) string { return fmt.Sprint(s) },
		frameFn: func(f FH) string { return fmt.Sprint(f) },
		outFn:   func(o Out) string { return fmt.Sprint(o) },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Hooks returns engine hooks that append one Step per scheduler iteration.
func (r *Recorder[Seed, FH, Out]) Hooks() espalier.Hooks[Seed, FH, Out] {
	return espalier.Hooks[Seed, FH, Out]{OnStep: r.record}
}

// Finish stamps the final result onto the trace and returns it.
func (r *Recorder[Seed, FH, Out]) Finish(result Out) *Trace {
	r.tr.Result = r.outFn(result)
	return r.tr
}

// Trace returns the trace recorded so far.
func (r *Recorder[Seed, FH, Out]) Trace() *Trace {
	return r.tr
}

func (r *Recorder[Seed, FH, Out]) record(s espalier.Step[Seed, FH, Out]) {
	step := Step{
		N:       s.N,
		Op:      s.Op.String(),
		Work:    make([]string, len(s.Work)),
		Results: make([]string, len(s.Results)),
	}

	for i, task := range s.Work {
		switch task.Op {
		case espalier.OpExpand:
			step.Work[i] = "expand " + r.seedFn(task.Seed)
		case espalier.OpCollapse:
			step.Work[i] = "collapse " + r.frameFn(task.Frame)
		}
	}
	for i, out := range s.Results {
		step.Results[i] = r.outFn(out)
	}

	r.tr.Steps = append(r.tr.Steps, step)
}
