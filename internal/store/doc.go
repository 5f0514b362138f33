// Package store records solves in a SQLite run log.
//
// Each run keeps the canonical configuration and its hash, the outcome
// (solved or no solution, with the reason), and for solved runs the full
// trace, its hash and the critical path as rows of run_steps. A stored run
// can be solved again and its trace hash compared, which is how `chg
// replay` checks determinism across versions.
//
// Runs are ordered by seq, a counter assigned at write time. Queries
// always ORDER BY seq so listings are identical across machines.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: run_steps cascade with their run
package store
