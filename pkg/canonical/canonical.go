// Package canonical produces deterministic content hashes of structured
// payloads. Serialization follows RFC 8785 (JSON Canonicalization Scheme):
// lexicographically sorted keys at every nesting level, no insignificant
// whitespace, no HTML escaping, UTF-8. Two payloads with the same key/value
// sets hash identically regardless of construction order or process restarts.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"

	dErrors "veridoc/pkg/domain-errors"
)

// DigestLength is the hex length of a full content hash.
const DigestLength = 64

// Hash returns the lowercase hex SHA-256 digest of the canonical JSON form of
// payload. Payloads containing values outside the JSON type set (channels,
// funcs, NaN) fail with a CodeSerialization error.
func Hash(payload any) (string, error) {
	raw, err := Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Marshal returns the RFC 8785 canonical JSON encoding of payload.
func Marshal(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeSerialization, "payload not serializable: "+err.Error())
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeSerialization, "canonicalization failed: "+err.Error())
	}
	return canon, nil
}
