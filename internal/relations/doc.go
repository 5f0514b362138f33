// Package relations provides the generic relations most graphs are built
// from: sums and products, pass-through, first order Euler integration and
// backward finite differences.
//
// Every relation is a small value type implementing graph.Relation and
// graph.Parameterized, so edge registration can check that the inputs a
// relation reads are bound. Relations never panic on bad numbers; domain
// failures wrap ErrDomain and surface as computation errors of the edge
// attempt.
package relations
