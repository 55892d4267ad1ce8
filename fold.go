package espalier

import (
	"fmt"
	"slices"
)

// Fold expands seed into recursive structure and collapses that structure
// into a single result in one fused pass. No intermediate tree or store is
// materialized: every frame produced by expand is immediately torn apart by
// scatter (children leave as new seeds, Holes take their places), parked on
// an explicit heap work stack, and refilled by resolve once the child
// results are on the result stack. The goroutine stack stays flat however
// deep the structure grows.
//
// scatter and resolve must be instantiations of the same layer map (see
// MapFunc); the match between holes and results depends on both visiting
// child positions in the same order. Termination is the caller's
// obligation: expand must eventually produce frames without children.
//
// Optional hooks receive a Step snapshot after every processed work item.
func Fold[Seed, Out, FS, FH, FO any](
	seed Seed,
	expand func(Seed) FS,
	scatter MapFunc[Seed, Hole, FS, FH],
	resolve MapFunc[Hole, Out, FH, FO],
	collapse func(FO) Out,
	hooks ...Hooks[Seed, FH, Out],
) Out {
	out, _ := TryFold(seed,
		func(s Seed) (FS, error) { return expand(s), nil },
		scatter,
		resolve,
		func(fo FO) (Out, error) { return collapse(fo), nil },
		hooks...,
	)
	return out
}

// TryFold is Fold with fallible expand and collapse callbacks. The first
// error aborts the pass immediately and is returned unwrapped; no further
// callbacks run and no partial result is produced.
func TryFold[Seed, Out, FS, FH, FO any](
	seed Seed,
	expand func(Seed) (FS, error),
	scatter MapFunc[Seed, Hole, FS, FH],
	resolve MapFunc[Hole, Out, FH, FO],
	collapse func(FO) (Out, error),
	hooks ...Hooks[Seed, FH, Out],
) (Out, error) {
	var zero Out

	var onStep []func(Step[Seed, FH, Out])
	for _, h := range hooks {
		if h.OnStep != nil {
			onStep = append(onStep, h.OnStep)
		}
	}

	work := []Task[Seed, FH]{{Op: OpExpand, Seed: seed}}
	var results []Out

	for step := 0; len(work) > 0; step++ {
		t := work[len(work)-1]
		work = work[:len(work)-1]

		switch t.Op {
		case OpExpand:
			fs, err := expand(t.Seed)
			if err != nil {
				return zero, err
			}
			// Park the frame first, then push its children above it in
			// position order. LIFO processing finishes the last child's
			// subtree first, so by the time the frame resurfaces the result
			// stack holds its children with the first position on top.
			parked := len(work)
			work = append(work, Task[Seed, FH]{Op: OpCollapse})
			fh := scatter(fs, func(child Seed) Hole {
				work = append(work, Task[Seed, FH]{Op: OpExpand, Seed: child})
				return Hole{}
			})
			work[parked].Frame = fh

		case OpCollapse:
			fo := resolve(t.Frame, func(Hole) Out {
				if len(results) == 0 {
					panic("espalier: result stack underflow: layer map resolves more positions than it scattered")
				}
				r := results[len(results)-1]
				results = results[:len(results)-1]
				return r
			})
			out, err := collapse(fo)
			if err != nil {
				return zero, err
			}
			results = append(results, out)

		default:
			panic(fmt.Sprintf("espalier: corrupt work stack entry kind %d", t.Op))
		}

		if len(onStep) > 0 {
			snap := Step[Seed, FH, Out]{
				N:       step,
				Op:      t.Op,
				Work:    slices.Clone(work),
				Results: slices.Clone(results),
			}
			for _, fn := range onStep {
				fn(snap)
			}
		}
	}

	if len(results) != 1 {
		panic(fmt.Sprintf("espalier: fold finished with %d results on the stack, want exactly 1", len(results)))
	}
	return results[0], nil
}
