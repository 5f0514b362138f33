package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainTrace  = "chg/trace/v1"
	DomainConfig = "chg/config/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TraceHash hashes the canonical JSON of a trace.
func TraceHash(canonical []byte) string {
	return hashWithDomain(DomainTrace, canonical)
}

// ConfigHash hashes a solve configuration given as plain Go values
// (map[string]any, []any, strings, numbers, bools). Two configurations that
// differ only in key order or string normalization hash the same.
func ConfigHash(v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ConfigHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfig, canonical), nil
}

// MustConfigHash is like ConfigHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustConfigHash(v any) string {
	h, err := ConfigHash(v)
	if err != nil {
		panic(err)
	}
	return h
}
