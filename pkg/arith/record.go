package arith

import (
	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/trace"
)

// EvalRecorder records fused evaluations of arithmetic trees.
type EvalRecorder = trace.Recorder[*Tree, Expr[espalier.Hole], int64]

// NewEvalRecorder builds a recorder wired with arithmetic renderers: pending
// seeds print as infix expressions and parked frames with underscores in
// their child slots. Attach it to Eval via Hooks and seal it with Finish.
func NewEvalRecorder(label string) *EvalRecorder {
	return trace.NewRecorder(
		trace.WithLabel[*Tree, Expr[espalier.Hole], int64](label),
		trace.WithSeedRenderer[*Tree, Expr[espalier.Hole], int64]((*Tree).String),
		trace.WithFrameRenderer[*Tree, Expr[espalier.Hole], int64](DescribeFrame),
	)
}
