package cassettestore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/interposehq/interpose/internal/tape"
)

// makeTestCassette builds the two-interaction cassette shared by the
// store tests and the golden fixture.
func makeTestCassette(t *testing.T) *tape.Cassette {
	t.Helper()

	get, err := tape.RecordInteraction(
		tape.InteractionRequest{
			Protocol: "http",
			Action:   "GET",
			Target:   "/users",
			Headers:  tape.Pairs{{Key: "Accept", Value: "application/json"}},
			Body:     []byte{},
		},
		[]tape.ResponseChunk{
			{Data: []byte(`[{"id":1}]`), Sequence: 0, Metadata: tape.Pairs{{Key: "status", Value: "200"}}},
		},
		tape.Pairs{{Key: "id", Value: "rec-1"}},
	)
	require.NoError(t, err)

	post, err := tape.RecordInteraction(
		tape.InteractionRequest{
			Protocol: "http",
			Action:   "POST",
			Target:   "/users",
			Headers:  tape.Pairs{},
			Body:     []byte(`{"name":"ada"}`),
		},
		[]tape.ResponseChunk{
			{Data: []byte("created"), Sequence: 0, Metadata: tape.Pairs{{Key: "status", Value: "201"}}},
			{Data: []byte("!"), Sequence: 1, Metadata: tape.Pairs{}},
		},
		tape.Pairs{{Key: "id", Value: "rec-2"}},
	)
	require.NoError(t, err)

	return tape.NewCassette(get, post)
}

func newCassetteOf(t *testing.T, interactions ...tape.Interaction) *tape.Cassette {
	t.Helper()
	return tape.NewCassette(interactions...)
}

// assertRoundTrip checks that a loaded cassette preserves every
// interaction and serves every fingerprint through the rebuilt index.
func assertRoundTrip(t *testing.T, original, loaded *tape.Cassette) {
	t.Helper()

	require.Equal(t, original.Interactions(), loaded.Interactions())
	for _, interaction := range original.Interactions() {
		found, ok := loaded.Find(interaction.Fingerprint)
		require.True(t, ok, "fingerprint %s must be findable after load", interaction.Fingerprint)
		require.Equal(t, interaction.ResponseChunks, found.ResponseChunks)
	}
}
