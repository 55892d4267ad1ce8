/*
Package espalier evaluates recursive structures without using the native call
stack. It grows trees from seeds, folds trees into results, and fuses both
into a single pass, all driven by explicit heap-allocated stacks. The depth
of the structure is bounded by memory, never by goroutine stack limits.

An espalier is a frame that trains a tree to grow flat against a wall. This
package does the same to recursive computation: the shape of the recursion is
preserved, but it runs flat.

# Concept

A recursive structure is described one layer at a time. A layer is a single
node's worth of shape in which every child position holds a value of some
generic type C: a seed that still needs expanding, an Index into a Store, a
Hole awaiting a result, or a finished result. The only capability a layer
type must provide is a MapFunc, one generic function that rebuilds a layer
with every child position passed through a callback. Because the same
MapFunc body is instantiated at every child type, all engine phases traverse
child positions in exactly the same order, and the bookkeeping that matches
children to results needs no reflection and no type assertions.

# Entry Points

  - Fold / TryFold: fused single-pass evaluation from a seed to a result.
    Nothing intermediate is materialized; frames are parked on an explicit
    work stack with Holes in their child positions until the child results
    arrive on a result stack.
  - Expand / TryExpand: grow a seed into a Store, a flattened arena in which
    layers reference children by Index.
  - Collapse / TryCollapse: tear a Store down bottom-up into a single result,
    consuming it.

The Try variants accept fallible callbacks; the first error aborts the pass
and is returned unchanged. Violations of the structural discipline (a layer
map that drops or duplicates a child position) are programming errors and
panic.

# Usage

Evaluating an arithmetic tree with the fused engine:

	import (
		"fmt"

		"github.com/aretw0/espalier"
		"github.com/aretw0/espalier/pkg/arith"
	)

	func main() {
		expr := arith.Mul(arith.Sub(arith.Lit(5), arith.Lit(3)), arith.Add(arith.Lit(3), arith.Lit(12)))

		got := espalier.Fold(expr,
			arith.Project,
			arith.MapExpr[*arith.Tree, espalier.Hole],
			arith.MapExpr[espalier.Hole, int64],
			arith.EvalExpr,
		)
		fmt.Println(got) // 30
	}

# Observation

Fold and TryFold accept optional Hooks. After every processed work item the
engine snapshots both stacks into a Step, which is how the trace recorder,
the structured-logging example and the Prometheus step metrics attach
without the engine knowing about any of them.

# Subpackages

  - pkg/arith: arithmetic expression layers, builders, codecs.
  - pkg/match: a three-phase file matcher built on staged folds.
  - pkg/trace: step recording and terminal replay of engine runs.
  - pkg/ports, pkg/adapters/...: trace persistence (memory, Redis, Loam) and
    the HTTP and MCP front ends.
*/
package espalier
