package tape

// ResponseChunk is one discrete piece of response data.
//
// A response is an ordered, non-empty sequence of chunks whose Sequence
// numbers are contiguous starting at 0. Single-shot protocols record a
// lone chunk at sequence 0; streaming protocols record one chunk per
// frame in delivery order.
type ResponseChunk struct {
	// Data is the chunk payload.
	Data []byte `json:"data" yaml:"data"`

	// Sequence is the zero-based position of the chunk in the response.
	Sequence int `json:"sequence" yaml:"sequence"`

	// Metadata carries optional chunk-level pairs, e.g. a status code
	// or content type captured by a protocol adapter.
	Metadata Pairs `json:"metadata" yaml:"metadata"`
}

// cloneChunks copies a chunk slice so callers cannot alias the
// recorded sequence held by a Cassette.
func cloneChunks(chunks []ResponseChunk) []ResponseChunk {
	if chunks == nil {
		return nil
	}
	out := make([]ResponseChunk, len(chunks))
	copy(out, chunks)
	return out
}
