package tape

// Interaction is one recorded request/response pairing together with
// the precomputed fingerprint used for matching.
//
// Construct through NewInteraction; the zero value and hand-assembled
// literals bypass validation and must not escape this package.
type Interaction struct {
	Request        InteractionRequest
	Fingerprint    RequestFingerprint
	ResponseChunks []ResponseChunk
	Metadata       Pairs
}

// NewInteraction validates and constructs an interaction.
//
// Enforced invariants:
//   - fingerprint equals FingerprintOf(request)
//   - responseChunks is non-empty
//   - chunk sequence numbers start at 0 and increase by exactly 1
//
// Violations return a *ValidationError naming the broken rule.
func NewInteraction(request InteractionRequest, fingerprint RequestFingerprint, responseChunks []ResponseChunk, metadata Pairs) (Interaction, error) {
	expected, err := FingerprintOf(request)
	if err != nil {
		return Interaction{}, err
	}
	if fingerprint != expected {
		return Interaction{}, newValidationError(RuleFingerprintMismatch,
			"fingerprint does not match request: expected %s, got %s", expected, fingerprint)
	}

	if len(responseChunks) == 0 {
		return Interaction{}, newValidationError(RuleChunksEmpty, "response chunks cannot be empty")
	}
	for i, chunk := range responseChunks {
		if chunk.Sequence != i {
			return Interaction{}, newValidationError(RuleChunksSequence,
				"response chunks must be contiguous from 0: chunk at position %d has sequence %d", i, chunk.Sequence)
		}
	}

	return Interaction{
		Request:        request,
		Fingerprint:    fingerprint,
		ResponseChunks: cloneChunks(responseChunks),
		Metadata:       metadata.Clone(),
	}, nil
}

// RecordInteraction constructs an interaction from a request and its
// response, computing the fingerprint from the request. Used on the
// recording path where no precomputed fingerprint exists yet.
func RecordInteraction(request InteractionRequest, responseChunks []ResponseChunk, metadata Pairs) (Interaction, error) {
	fingerprint, err := FingerprintOf(request)
	if err != nil {
		return Interaction{}, err
	}
	return NewInteraction(request, fingerprint, responseChunks, metadata)
}
