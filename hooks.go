package espalier

// Op identifies the kind of a work stack entry.
type Op uint8

const (
	// OpExpand marks a seed waiting to be expanded into a frame.
	OpExpand Op = iota + 1
	// OpCollapse marks a parked frame waiting for its child results.
	OpCollapse
)

func (o Op) String() string {
	switch o {
	case OpExpand:
		return "expand"
	case OpCollapse:
		return "collapse"
	default:
		return "unknown"
	}
}

// Task is one work stack entry as seen by an observer. Seed is meaningful
// for OpExpand entries, Frame for OpCollapse entries.
type Task[Seed, FH any] struct {
	Op    Op
	Seed  Seed
	Frame FH
}

// Step is the snapshot handed to observers after each work item is
// processed. Work and Results are copies ordered bottom to top; mutating
// them has no effect on the running fold.
type Step[Seed, FH, Out any] struct {
	// N is the 0-based ordinal of the processed work item.
	N int
	// Op is the kind of work item that was just processed.
	Op Op
	// Work is the remaining work stack.
	Work []Task[Seed, FH]
	// Results is the result stack, including the value the step produced.
	Results []Out
}

// Hooks observes a fused fold step by step. The zero value disables
// observation and costs one length check per step. Observers see consistent
// snapshots but cannot influence the fold; this is the attachment point for
// tracing, logging, and metrics.
type Hooks[Seed, FH, Out any] struct {
	OnStep func(Step[Seed, FH, Out])
}
