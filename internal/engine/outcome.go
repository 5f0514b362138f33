package engine

// Outcome is the result of one edge-firing attempt.
type Outcome int

const (
	// Produced: the relation computed a value and it was memoized.
	Produced Outcome = iota

	// InputsUnresolved: an input could not be produced (or would cycle).
	// A retry signal, not a failure of the edge itself.
	InputsUnresolved

	// Invalid: the validity predicate rejected the index combination.
	Invalid

	// ComputationFailed: the relation returned an error.
	ComputationFailed
)

func (o Outcome) String() string {
	switch o {
	case Produced:
		return "produced"
	case InputsUnresolved:
		return "inputs_unresolved"
	case Invalid:
		return "invalid"
	case ComputationFailed:
		return "computation_error"
	default:
		return "unknown"
	}
}
