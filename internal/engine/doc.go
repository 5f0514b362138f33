// Package engine implements the CHG resolver: the search that turns a
// target node and a termination condition into a chain of edge firings.
//
// ARCHITECTURE:
//
// Lazy backward resolution:
// The resolver never schedules the whole graph. To produce node N at index
// i it walks the candidate edges of N in registry order, derives the input
// indices each edge needs from its index rules and offset, and resolves
// those inputs the same way. Values are memoized per (node, index) for the
// lifetime of one solve.
//
// Explicit frame stack:
// Resolution runs on a slice of frames (node, index, next edge, next index
// combination, next input) instead of Go recursion. Stack depth is bounded
// by the graph, not the goroutine stack, and the search budget is a plain
// counter checked before every firing attempt.
//
// Search loop:
//  1. Memo hit or constant: done.
//  2. Next candidate combination: charge one attempt against the budget.
//  3. Validity predicate over the realized indices; reject means Invalid.
//  4. Unresolved inputs are pushed as child frames; a child that fails, or
//     an input already being resolved further down the stack, abandons the
//     combination (InputsUnresolved).
//  5. Relation error: ComputationFailed, recorded, next combination.
//  6. Success: memoize with provenance, pop.
//
// The top level extends the target to index 0, 1, 2, ... until the
// termination condition holds at an index >= MinIndex. Failure to extend,
// an exhausted budget, or passing MaxIndex ends the solve with
// ErrNoSolution.
//
// DETERMINISM:
// Edges are tried in registry order, combinations in input declaration
// order, relations are pure. Identical (graph, seeds, bounds) produce
// identical traces and identical Trace.Hash values. A Resolver keeps no
// per-solve state; concurrent Solve calls over a fully built registry are
// safe.
package engine
