package ir

// Version constants for persisted formats and the binary.
const (
	// FormatVersion is the version of the trace and run encodings.
	FormatVersion = "1"

	// EngineVersion is the chg version.
	EngineVersion = "0.1.0"
)
