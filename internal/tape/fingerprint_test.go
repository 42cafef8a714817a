package tape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRequest() InteractionRequest {
	return InteractionRequest{
		Protocol: "http",
		Action:   "GET",
		Target:   "/users",
		Headers: Pairs{
			{Key: "Accept", Value: "application/json"},
		},
		Body: []byte{},
	}
}

func TestFingerprintOf_Deterministic(t *testing.T) {
	first, err := FingerprintOf(makeRequest())
	require.NoError(t, err)
	second, err := FingerprintOf(makeRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.Value(), 64)
}

func TestFingerprintOf_KnownVector(t *testing.T) {
	// Pins the canonical encoding: a change to header sorting, tuple
	// layout, or body encoding breaks this digest.
	fp, err := FingerprintOf(makeRequest())
	require.NoError(t, err)
	assert.Equal(t, "a2fea44269ff4867f3cb5de3f783a04abaa4d0063acb99dae2d0f031ff7c166f", fp.Value())
}

func TestFingerprintOf_HeaderOrderInsensitive(t *testing.T) {
	forward := InteractionRequest{
		Protocol: "http",
		Action:   "POST",
		Target:   "/orders",
		Headers: Pairs{
			{Key: "Accept", Value: "application/json"},
			{Key: "X-Tenant", Value: "acme"},
		},
		Body: []byte("payload"),
	}
	reversed := forward
	reversed.Headers = Pairs{
		{Key: "X-Tenant", Value: "acme"},
		{Key: "Accept", Value: "application/json"},
	}

	fpForward, err := FingerprintOf(forward)
	require.NoError(t, err)
	fpReversed, err := FingerprintOf(reversed)
	require.NoError(t, err)

	assert.Equal(t, fpForward, fpReversed, "reordering the same header set must not change the fingerprint")
}

func TestFingerprintOf_SensitiveToEveryField(t *testing.T) {
	base := makeRequest()
	baseFP, err := FingerprintOf(base)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		mutate func(r *InteractionRequest)
	}{
		{"protocol", func(r *InteractionRequest) { r.Protocol = "grpc" }},
		{"action", func(r *InteractionRequest) { r.Action = "POST" }},
		{"target", func(r *InteractionRequest) { r.Target = "/orders" }},
		{"header key", func(r *InteractionRequest) { r.Headers = Pairs{{Key: "Accept-Encoding", Value: "application/json"}} }},
		{"header value", func(r *InteractionRequest) { r.Headers = Pairs{{Key: "Accept", Value: "text/plain"}} }},
		{"extra header", func(r *InteractionRequest) {
			r.Headers = append(Pairs{}, r.Headers...)
			r.Headers = append(r.Headers, Pair{Key: "X-Extra", Value: "1"})
		}},
		{"body", func(r *InteractionRequest) { r.Body = []byte("x") }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mutated := makeRequest()
			tc.mutate(&mutated)

			fp, err := FingerprintOf(mutated)
			require.NoError(t, err)
			assert.NotEqual(t, baseFP, fp, "changing %s must change the fingerprint", tc.name)
		})
	}
}

func TestFingerprintOf_EmptyRequest(t *testing.T) {
	fp, err := FingerprintOf(InteractionRequest{Protocol: "http", Action: "GET", Target: "/"})
	require.NoError(t, err)

	// Empty headers and body are valid and produce a well-formed digest.
	parsed, err := ParseFingerprint(fp.Value())
	require.NoError(t, err)
	assert.Equal(t, fp, parsed)
}

func TestFingerprintOf_BinaryBody(t *testing.T) {
	binary := InteractionRequest{Protocol: "tcp", Action: "send", Target: "peer", Body: []byte{0x00, 0xff, 0xfe}}
	truncated := InteractionRequest{Protocol: "tcp", Action: "send", Target: "peer", Body: []byte{0x00, 0xff}}

	fpBinary, err := FingerprintOf(binary)
	require.NoError(t, err)
	fpTruncated, err := FingerprintOf(truncated)
	require.NoError(t, err)

	assert.NotEqual(t, fpBinary, fpTruncated, "binary bodies must hash losslessly")
}

func TestParseFingerprint(t *testing.T) {
	valid := "a2fea44269ff4867f3cb5de3f783a04abaa4d0063acb99dae2d0f031ff7c166f"

	t.Run("valid", func(t *testing.T) {
		fp, err := ParseFingerprint(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, fp.Value())
		assert.False(t, fp.IsZero())
	})

	testCases := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"too short", valid[:63]},
		{"too long", valid + "0"},
		{"uppercase", "A" + valid[1:]},
		{"non-hex", "g" + valid[1:]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFingerprint(tc.value)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, RuleFingerprintFormat, ve.Rule)
		})
	}
}
