package graph

// Node is a named quantity in the graph.
//
// A node declared with WithValue is constant: it answers every index with
// the same value. Every other node is dynamic and gets its per-index history
// from the solve that resolves it. Units and Description are informational.
type Node struct {
	Name        string `json:"name"`
	Units       string `json:"units,omitempty"`
	Description string `json:"description,omitempty"`

	constant bool
	value    float64
}

// NodeOption configures a node at registration.
type NodeOption func(*Node)

// WithValue declares the node constant with the given value.
func WithValue(v float64) NodeOption {
	return func(n *Node) {
		n.constant = true
		n.value = v
	}
}

// WithUnits sets the physical unit label.
func WithUnits(units string) NodeOption {
	return func(n *Node) {
		n.Units = units
	}
}

// WithDescription sets the human-readable description.
func WithDescription(desc string) NodeOption {
	return func(n *Node) {
		n.Description = desc
	}
}

// Constant returns the declared constant value and true, or false for a
// dynamic node.
func (n *Node) Constant() (float64, bool) {
	return n.value, n.constant
}
