package espalier

import "fmt"

// Index addresses one layer inside a Store. Child positions of stored
// layers hold Index values instead of substructure. An index always refers
// to a strictly younger layer than the one holding it, so the links can
// never form a cycle.
type Index int

// Root is the index of the layer Expand built from the original seed.
const Root Index = 0

// Store is a recursive structure flattened into one backing slice, with
// layers referencing their children by Index. A Store is built once by
// Expand and torn down exactly once by Collapse.
type Store[FI any] struct {
	layers []FI
}

// Len reports how many layers the store holds. A collapsed store has none.
func (s *Store[FI]) Len() int { return len(s.layers) }

// Layer returns the layer at i without consuming it. It panics when i is
// out of range, which includes any read from an already collapsed store.
func (s *Store[FI]) Layer(i Index) FI {
	if int(i) < 0 || int(i) >= len(s.layers) {
		panic(fmt.Sprintf("espalier: layer index %d out of range in store of %d layers", i, len(s.layers)))
	}
	return s.layers[i]
}

// Expand grows seed into a Store without native recursion. Seeds wait on a
// FIFO frontier; each one taken off is expanded into a single frame whose
// child seeds are queued in turn. index assigns every child the slot it
// will occupy once dequeued, so parent layers carry valid forward
// references before their children exist. The original seed's layer lands
// at Root.
func Expand[Seed, FS, FI any](
	seed Seed,
	expand func(Seed) FS,
	index MapFunc[Seed, Index, FS, FI],
) *Store[FI] {
	s, _ := TryExpand(seed, func(sd Seed) (FS, error) { return expand(sd), nil }, index)
	return s
}

// TryExpand is Expand with a fallible expansion callback. The first error
// aborts the build and is returned unwrapped; the partial store is
// discarded.
func TryExpand[Seed, FS, FI any](
	seed Seed,
	expand func(Seed) (FS, error),
	index MapFunc[Seed, Index, FS, FI],
) (*Store[FI], error) {
	frontier := []Seed{seed}
	head := 0
	layers := make([]FI, 0, 8)

	for head < len(frontier) {
		next := frontier[head]
		head++

		fs, err := expand(next)
		if err != nil {
			return nil, err
		}
		fi := index(fs, func(child Seed) Index {
			frontier = append(frontier, child)
			// The child's final slot: layers already emitted, plus the one
			// being emitted now, plus the seeds queued ahead of the child.
			return Index(len(layers) + len(frontier) - head)
		})
		layers = append(layers, fi)
	}
	return &Store[FI]{layers: layers}, nil
}

// Collapse tears the store down into a single result, consuming it. Layers
// are visited youngest first, so every child result already exists when its
// parent's resolve asks for it; each child result is handed out exactly
// once.
func Collapse[Out, FI, FO any](
	s *Store[FI],
	resolve MapFunc[Index, Out, FI, FO],
	collapse func(FO) Out,
) Out {
	out, _ := TryCollapse(s, resolve, func(fo FO) (Out, error) { return collapse(fo), nil })
	return out
}

// TryCollapse is Collapse with a fallible reduction callback. The first
// error aborts the pass and is returned unwrapped. The store is consumed
// either way.
func TryCollapse[Out, FI, FO any](
	s *Store[FI],
	resolve MapFunc[Index, Out, FI, FO],
	collapse func(FO) (Out, error),
) (Out, error) {
	var zero Out
	n := len(s.layers)
	if n == 0 {
		panic("espalier: collapse of an empty or already collapsed store")
	}

	results := make([]Out, n)
	live := make([]bool, n)

	for i := n - 1; i >= 0; i-- {
		fo := resolve(s.layers[i], func(child Index) Out {
			c := int(child)
			switch {
			case c <= i || c >= n:
				panic(fmt.Sprintf("espalier: layer %d references child %d; children must be strictly younger", i, c))
			case !live[c]:
				panic(fmt.Sprintf("espalier: child result %d consumed twice", c))
			}
			live[c] = false
			return results[c]
		})
		out, err := collapse(fo)
		if err != nil {
			s.layers = nil
			return zero, err
		}
		results[i] = out
		live[i] = true
	}

	s.layers = nil
	return results[0], nil
}
