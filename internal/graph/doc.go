// Package graph defines the indexed hypergraph data model solved by the
// engine.
//
// A Registry owns named quantity nodes and the relation edges that derive
// them. Nodes are either constant (one value for every index) or dynamic
// (a sparse history keyed by non-negative index, see Series). Edges are
// directed hyperedges: a set of labeled inputs, each bound to a node through
// an IndexRule, a Relation computing the target value, a Validity predicate
// over the realized input indices, and an index offset.
//
// The registry holds structure only. Resolved values live in the per-solve
// memo owned by the engine, so the same registry can be solved repeatedly
// with different seeds.
//
// INVARIANTS:
//   - Node names are unique; edge labels are unique.
//   - Edges for a target keep registration order (ties on Priority).
//   - No implicit edges: every derivation path is registered explicitly.
//   - A Series value, once written, never changes.
package graph
