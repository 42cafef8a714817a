package tape

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// RequestFingerprint is the stable matching key derived from a request:
// the SHA-256 digest of the request's canonical encoding, rendered as
// 64 lowercase hexadecimal characters.
//
// Equality is value equality of the hex string, so fingerprints are
// usable directly as map keys.
type RequestFingerprint struct {
	value string
}

const fingerprintLen = 64

// ParseFingerprint validates a serialized fingerprint value.
// Anything but exactly 64 lowercase hex characters is rejected.
func ParseFingerprint(value string) (RequestFingerprint, error) {
	if len(value) != fingerprintLen {
		return RequestFingerprint{}, newValidationError(RuleFingerprintFormat,
			"fingerprint must be %d characters, got %d", fingerprintLen, len(value))
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return RequestFingerprint{}, newValidationError(RuleFingerprintFormat,
				"fingerprint must be lowercase hexadecimal, got %q at offset %d", c, i)
		}
	}
	return RequestFingerprint{value: value}, nil
}

// Value returns the 64-character lowercase hex digest.
func (f RequestFingerprint) Value() string { return f.value }

// IsZero reports whether the fingerprint is the uninitialized zero value.
func (f RequestFingerprint) IsZero() bool { return f.value == "" }

func (f RequestFingerprint) String() string { return f.value }

// FingerprintOf derives the fingerprint for a request.
//
// The canonical form is the JSON array
//
//	[protocol, action, target, [[key, value], ...], hex(body)]
//
// with header pairs sorted byte-wise by key then value, passed through
// RFC 8785 canonicalization before hashing. Sorting makes the result
// insensitive to header order; every other field change (including the
// value of a reordered header) changes the digest. The body is hex
// encoded first so binary payloads hash losslessly.
func FingerprintOf(r InteractionRequest) (RequestFingerprint, error) {
	canonical, err := canonicalRequest(r)
	if err != nil {
		return RequestFingerprint{}, fmt.Errorf("canonicalize request: %w", err)
	}
	digest := sha256.Sum256(canonical)
	return RequestFingerprint{value: hex.EncodeToString(digest[:])}, nil
}

// canonicalRequest produces the canonical byte encoding hashed by
// FingerprintOf.
func canonicalRequest(r InteractionRequest) ([]byte, error) {
	headers := r.Headers.sorted()
	pairs := make([][2]string, len(headers))
	for i, p := range headers {
		pairs[i] = [2]string{p.Key, p.Value}
	}

	tuple := []any{r.Protocol, r.Action, r.Target, pairs, hex.EncodeToString(r.Body)}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tuple); err != nil {
		return nil, err
	}

	// RFC 8785 pins string escaping and whitespace so the encoding is
	// stable across runs and platforms.
	return jcs.Transform(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
