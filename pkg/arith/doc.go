/*
Package arith is the arithmetic expression domain: integer literals combined
with addition, subtraction, and multiplication.

It exists both as a usable evaluator and as the reference consumer of the
espalier engines. Expr is the layer type, MapExpr its layer map, and Tree
the conventional boxed representation. Eval runs the fused engine, EvalStore
the two-phase store engine, and EvalNative ordinary recursion for
comparison. Document decoding also runs on the engine, so expression depth
is never limited by this package's own call stack.
*/
package arith
