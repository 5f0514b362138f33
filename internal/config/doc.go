// Package config loads solve configurations.
//
// A configuration is a CUE file validated against the embedded #Config
// schema (schema.cue). The same fields are accepted from YAML by the test
// harness, so Solve carries json and yaml tags and its own Validate.
//
// Example:
//
//	model: "pendulum/driven"
//	min_index: 3
//	inputs: theta_B: 0.5
//	debug: nodes: ["alpha_B"]
package config
