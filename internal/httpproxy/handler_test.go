package httpproxy

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interposehq/interpose/internal/broker"
	"github.com/interposehq/interpose/internal/tape"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeHTTPCassette(t *testing.T, method, target string, status, body string) *tape.Cassette {
	t.Helper()

	request := tape.InteractionRequest{
		Protocol: "http",
		Action:   method,
		Target:   target,
		Body:     []byte{},
	}
	interaction, err := tape.RecordInteraction(request, []tape.ResponseChunk{{
		Data:     []byte(body),
		Sequence: 0,
		Metadata: tape.Pairs{
			{Key: MetaStatus, Value: status},
			{Key: MetaContentType, Value: "application/json"},
		},
	}}, nil)
	require.NoError(t, err)
	return tape.NewCassette(interaction)
}

func TestHandler_ReplayHit(t *testing.T) {
	cassette := makeHTTPCassette(t, "GET", "/api/data", "200", `{"status":"ok"}`)
	handler := NewHandler(broker.New(cassette), WithLogger(quietLogger()))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/data", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, `{"status":"ok"}`, recorder.Body.String())
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
}

func TestHandler_ReplayHitStreamsChunksInOrder(t *testing.T) {
	request := tape.InteractionRequest{Protocol: "http", Action: "GET", Target: "/stream", Body: []byte{}}
	interaction, err := tape.RecordInteraction(request, []tape.ResponseChunk{
		{Data: []byte("a"), Sequence: 0, Metadata: tape.Pairs{{Key: MetaStatus, Value: "200"}}},
		{Data: []byte("b"), Sequence: 1},
	}, nil)
	require.NoError(t, err)

	handler := NewHandler(broker.New(tape.NewCassette(interaction)), WithLogger(quietLogger()))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/stream", nil))

	assert.Equal(t, "ab", recorder.Body.String())
}

func TestHandler_ReplayMissReturns404(t *testing.T) {
	cassette := makeHTTPCassette(t, "GET", "/api/data", "200", "{}")
	handler := NewHandler(broker.New(cassette), WithLogger(quietLogger()))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/other", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "not recorded")
}

func TestHandler_RecordModeWithoutResponderReturns502(t *testing.T) {
	b := broker.New(nil, broker.WithMode(broker.ModeRecord))
	handler := NewHandler(b, WithLogger(quietLogger()))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/data", nil))

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestHandler_BodyParticipatesInMatching(t *testing.T) {
	request := tape.InteractionRequest{Protocol: "http", Action: "POST", Target: "/echo", Body: []byte("recorded")}
	interaction, err := tape.RecordInteraction(request, []tape.ResponseChunk{
		{Data: []byte("ok"), Sequence: 0, Metadata: tape.Pairs{{Key: MetaStatus, Value: "200"}}},
	}, nil)
	require.NoError(t, err)
	handler := NewHandler(broker.New(tape.NewCassette(interaction)), WithLogger(quietLogger()))

	hit := httptest.NewRecorder()
	handler.ServeHTTP(hit, httptest.NewRequest("POST", "/echo", strings.NewReader("recorded")))
	assert.Equal(t, http.StatusOK, hit.Code)

	miss := httptest.NewRecorder()
	handler.ServeHTTP(miss, httptest.NewRequest("POST", "/echo", strings.NewReader("different")))
	assert.Equal(t, http.StatusNotFound, miss.Code)
}

func TestHandler_AutoModeRecordsThenReplays(t *testing.T) {
	upstreamCalls := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("live"))
	}))
	defer upstream.Close()

	b := broker.New(nil,
		broker.WithMode(broker.ModeAuto),
		broker.WithLiveResponder(NewHTTPResponder(upstream.Client())),
	)
	handler := NewHandler(b, WithLogger(quietLogger()))

	// First request misses, forwards upstream, and records.
	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest("GET", upstream.URL+"/api/data", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "live", first.Body.String())
	assert.Equal(t, 1, upstreamCalls)
	assert.Equal(t, 1, b.Cassette().Len())

	// Second identical request replays without touching the upstream.
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest("GET", upstream.URL+"/api/data", nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "live", second.Body.String())
	assert.Equal(t, 1, upstreamCalls)
}

func TestHandler_MatchHeaders(t *testing.T) {
	request := tape.InteractionRequest{
		Protocol: "http",
		Action:   "GET",
		Target:   "/tenants",
		Headers:  tape.Pairs{{Key: "X-Tenant", Value: "acme"}},
		Body:     []byte{},
	}
	interaction, err := tape.RecordInteraction(request, []tape.ResponseChunk{
		{Data: []byte("ok"), Sequence: 0, Metadata: tape.Pairs{{Key: MetaStatus, Value: "200"}}},
	}, nil)
	require.NoError(t, err)

	handler := NewHandler(broker.New(tape.NewCassette(interaction)),
		WithLogger(quietLogger()),
		WithMatchHeaders("X-Tenant"),
	)

	withHeader := httptest.NewRequest("GET", "/tenants", nil)
	withHeader.Header.Set("X-Tenant", "acme")
	hit := httptest.NewRecorder()
	handler.ServeHTTP(hit, withHeader)
	assert.Equal(t, http.StatusOK, hit.Code)

	miss := httptest.NewRecorder()
	handler.ServeHTTP(miss, httptest.NewRequest("GET", "/tenants", nil))
	assert.Equal(t, http.StatusNotFound, miss.Code)
}
