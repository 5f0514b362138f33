package graph

import (
	"errors"
	"fmt"
)

// ErrNotYetResolved is returned by Series.Get for an index that has no value.
// It is a control signal for the resolver, not a failure.
var ErrNotYetResolved = errors.New("value not yet resolved")

// ErrorCode categorizes construction and consistency errors.
type ErrorCode string

const (
	// ErrCodeDuplicateNode indicates a node name was registered twice.
	ErrCodeDuplicateNode ErrorCode = "DUPLICATE_NODE_NAME"

	// ErrCodeDuplicateIndex indicates a different value was written at an
	// index that already holds one.
	ErrCodeDuplicateIndex ErrorCode = "DUPLICATE_INDEX_WRITE"

	// ErrCodeUnknownNode indicates an edge or request referenced a node
	// that is not registered.
	ErrCodeUnknownNode ErrorCode = "UNKNOWN_NODE"

	// ErrCodeDuplicateEdge indicates an edge label was registered twice.
	ErrCodeDuplicateEdge ErrorCode = "DUPLICATE_EDGE_LABEL"

	// ErrCodeInvalidEdge indicates a malformed edge definition.
	ErrCodeInvalidEdge ErrorCode = "INVALID_EDGE"

	// ErrCodeInvalidIndex indicates a write at a negative index.
	ErrCodeInvalidIndex ErrorCode = "INVALID_INDEX"
)

// Error is a fatal construction or consistency error.
type Error struct {
	Code    ErrorCode
	Message string

	// Node is the node involved, if any.
	Node string

	// Edge is the edge label involved, if any.
	Edge string

	// Index is the index involved (DUPLICATE_INDEX_WRITE only).
	Index int
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Edge != "" && e.Node != "":
		return fmt.Sprintf("%s: %s (edge=%s, node=%s)", e.Code, e.Message, e.Edge, e.Node)
	case e.Edge != "":
		return fmt.Sprintf("%s: %s (edge=%s)", e.Code, e.Message, e.Edge)
	case e.Node != "":
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is a *Error carrying code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code ErrorCode) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

// IsDuplicateIndex reports whether err is a DUPLICATE_INDEX_WRITE error.
func IsDuplicateIndex(err error) bool {
	return HasCode(err, ErrCodeDuplicateIndex)
}

// IsDuplicateNode reports whether err is a DUPLICATE_NODE_NAME error.
func IsDuplicateNode(err error) bool {
	return HasCode(err, ErrCodeDuplicateNode)
}

func invalidEdge(label, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidEdge,
		Message: fmt.Sprintf(format, args...),
		Edge:    label,
	}
}
