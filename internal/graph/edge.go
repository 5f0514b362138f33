package graph

// Edge is a named, directed hyperedge deriving Target from Inputs.
//
// For a requested output index i the edge fires at base index i-Offset.
// Each input reads the index its rule selects relative to the base, the
// Validity predicate checks the realized indices, and the Relation computes
// the value deposited at max(input indices)+Offset.
type Edge struct {
	Label    string
	Target   string
	Inputs   []Input
	Relation Relation
	Validity Validity

	// Offset is the displacement between the greatest input index and the
	// index the output is deposited at. Usually 0 or 1.
	Offset int

	// Disposable names inputs whose values are consumed immediately and need
	// not be retained for reporting.
	Disposable []string

	// Priority orders alternative edges for one target, lowest first. Edges
	// with equal priority keep registration order.
	Priority int

	seq int
}

// EdgeOption configures an edge at registration.
type EdgeOption func(*Edge)

// WithValidity replaces the default SameIndex validity.
func WithValidity(v Validity) EdgeOption {
	return func(e *Edge) {
		e.Validity = v
	}
}

// WithOffset sets the index offset.
func WithOffset(offset int) EdgeOption {
	return func(e *Edge) {
		e.Offset = offset
	}
}

// WithDisposable marks inputs as disposable.
func WithDisposable(names ...string) EdgeOption {
	return func(e *Edge) {
		e.Disposable = append(e.Disposable, names...)
	}
}

// WithPriority sets the edge priority.
func WithPriority(p int) EdgeOption {
	return func(e *Edge) {
		e.Priority = p
	}
}

// Input returns the named input.
func (e *Edge) Input(name string) (Input, bool) {
	for _, in := range e.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return Input{}, false
}

// IsDisposable reports whether the named input is disposable.
func (e *Edge) IsDisposable(name string) bool {
	for _, d := range e.Disposable {
		if d == name {
			return true
		}
	}
	return false
}

// Seq returns the registration sequence number (1-based).
func (e *Edge) Seq() int {
	return e.seq
}
