package observability

import (
	"time"

	"github.com/aretw0/espalier"
)

// Summary holds the aggregate statistics of one engine run.
type Summary struct {
	Steps      int           `json:"steps"`
	Expands    int           `json:"expands"`
	Collapses  int           `json:"collapses"`
	MaxWork    int           `json:"max_work"`
	MaxResults int           `json:"max_results"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Aggregator folds engine step snapshots into a Summary.
// Attach one aggregator per run; it is not safe for concurrent use.
type Aggregator[Seed, FH, Out any] struct {
	sum   Summary
	first time.Time
}

// NewAggregator creates an empty aggregator.
func NewAggregator[Seed, FH, Out any]() *Aggregator[Seed, FH, Out] {
	return &Aggregator[Seed, FH, Out]{}
}

// Hooks returns engine hooks that record every step into the summary.
func (a *Aggregator[Seed, FH, Out]) Hooks() espalier.Hooks[Seed, FH, Out] {
	return espalier.Hooks[Seed, FH, Out]{OnStep: a.record}
}

// Summary returns the statistics aggregated so far.
func (a *Aggregator[Seed, FH, Out]) Summary() Summary {
	return a.sum
}

func (a *Aggregator[Seed, FH, Out]) record(s espalier.Step[Seed, FH, Out]) {
	now := time.Now()
	if a.sum.Steps == 0 {
		a.first = now
	}
	a.sum.Elapsed = now.Sub(a.first)

	a.sum.Steps++
	switch s.Op {
	case espalier.OpExpand:
		a.sum.Expands++
	case espalier.OpCollapse:
		a.sum.Collapses++
	}
	a.sum.MaxWork = max(a.sum.MaxWork, len(s.Work))
	a.sum.MaxResults = max(a.sum.MaxResults, len(s.Results))
}
