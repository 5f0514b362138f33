package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/chg/internal/config"
	"github.com/roach88/chg/internal/engine"
	"github.com/roach88/chg/internal/ir"
)

// marshalConfig converts a configuration to canonical JSON TEXT. The
// stored text hashes to the run's config_hash.
func marshalConfig(cfg *config.Solve) (string, error) {
	data, err := ir.MarshalCanonical(cfg.Canonical())
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

// unmarshalConfig parses stored configuration TEXT. Canonical keys match
// the JSON tags of config.Solve.
func unmarshalConfig(data string) (*config.Solve, error) {
	var cfg config.Solve
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// marshalTrace converts a trace to JSON TEXT. Go sorts map keys, so equal
// traces produce equal text.
func marshalTrace(t *engine.Trace) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t); err != nil {
		return "", fmt.Errorf("marshal trace: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func unmarshalTrace(data string) (*engine.Trace, error) {
	var t engine.Trace
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return nil, fmt.Errorf("unmarshal trace: %w", err)
	}
	return &t, nil
}

// marshalRefs stores step inputs as a JSON array.
func marshalRefs(refs []engine.Ref) (string, error) {
	data, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("marshal inputs: %w", err)
	}
	return string(data), nil
}

func unmarshalRefs(data string) ([]engine.Ref, error) {
	var refs []engine.Ref
	if err := json.Unmarshal([]byte(data), &refs); err != nil {
		return nil, fmt.Errorf("unmarshal inputs: %w", err)
	}
	if refs == nil {
		refs = []engine.Ref{}
	}
	return refs, nil
}
