// Package ir provides the canonical encoding used for content-addressed
// identity: RFC 8785 style JSON and domain-separated SHA-256 hashes.
//
// ir imports nothing internal. The engine hashes traces with it, the store
// keys runs by config hash, and the CLI prints both.
//
// Key constraints:
//   - Object keys sorted by UTF-16 code units
//   - Strings NFC normalized
//   - Floats in shortest round-trip form; NaN and infinities rejected
//   - No null
package ir
