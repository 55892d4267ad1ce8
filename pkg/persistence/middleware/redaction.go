package middleware

import (
	"context"
	"regexp"
	"slices"

	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/trace"
)

type redactionMiddleware struct {
	next     ports.TraceStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks text matching the
// patterns before a trace is persisted. Traces replay whatever the source
// document contained, so anything sensitive in an expression ends up in the
// rendered work stack unless it is scrubbed here.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.TraceStore) ports.TraceStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, tr *trace.Trace) error {
	// 1. Deep Clone to avoid side effects on the in-memory trace, which the
	// recorder that produced it may still hold.
	cloned := cloneTrace(tr)

	// 2. Mask every rendered string
	cloned.Label = scrub(cloned.Label, m.patterns)
	cloned.Result = scrub(cloned.Result, m.patterns)
	for i := range cloned.Steps {
		scrubSlice(cloned.Steps[i].Work, m.patterns)
		scrubSlice(cloned.Steps[i].Results, m.patterns)
	}

	return m.next.Save(ctx, cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, id string) (*trace.Trace, error) {
	return m.next.Load(ctx, id)
}

func (m *redactionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func cloneTrace(tr *trace.Trace) *trace.Trace {
	cloned := *tr
	cloned.Steps = make([]trace.Step, len(tr.Steps))
	for i, s := range tr.Steps {
		s.Work = slices.Clone(s.Work)
		s.Results = slices.Clone(s.Results)
		cloned.Steps[i] = s
	}
	return &cloned
}

func scrub(s string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		s = p.ReplaceAllString(s, "***")
	}
	return s
}

func scrubSlice(ss []string, patterns []*regexp.Regexp) {
	for i, s := range ss {
		ss[i] = scrub(s, patterns)
	}
}
