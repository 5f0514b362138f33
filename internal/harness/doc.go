// Package harness runs YAML solve scenarios.
//
// A scenario names a configuration (the same fields as a CUE solve
// config), what the solve should produce, and assertions on the critical
// path and on the run as stored in the run log:
//
//	name: clock_basic
//	description: time advances by step
//	config:
//	  model: clock
//	expect:
//	  solved: true
//	  final_index: 3
//	  values:
//	    time: [0, 0.1, 0.2, 0.3]
//	assertions:
//	  - type: path_count
//	    edge: advance_time
//	    count: 3
//	  - type: final_state
//	    table: runs
//	    where: {status: solved}
//	    expect: {final_index: 3}
//
// Each scenario runs against a fresh in-memory store with a fixed run ID,
// so stored rows and golden snapshots are byte-identical across runs.
package harness
