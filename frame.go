package espalier

// MapFunc rebuilds one layer of structure, passing every child position
// through fn while leaving the layer's variant and payload untouched. FA is
// the layer with children of type A, FB the same layer with children of
// type B.
//
// This is the one capability a layer type must provide. A single generic
// implementation per layer type serves every engine phase, instantiated at
// different child types (seeds, indices, holes, results). Sharing one body
// across instantiations is what guarantees that every phase visits child
// positions in the same order, which the engines silently rely on.
//
// Implementations must:
//
//   - call fn exactly once per child position, in a fixed left-to-right
//     order that is the same for every instantiation
//   - preserve the layer's variant, payload, and child count
//   - not recurse into children, perform I/O, or retain fn
//
// Two laws follow and are cheap to test: mapping the identity function
// returns an equal layer, and mapping f then g equals mapping g after f in
// one pass.
type MapFunc[A, B, FA, FB any] func(frame FA, fn func(A) B) FB

// Hole marks a child position whose value is not available yet. While a
// frame is parked on the work stack of a fused fold, every child position
// holds a Hole; the corresponding results are popped off the result stack
// when the frame is finally collapsed.
type Hole struct{}
