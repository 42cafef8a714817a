// Package httpproxy adapts the broker to HTTP.
//
// Handler exposes a broker as an HTTP proxy for end-to-end testing:
// point a client's proxy setting at it and every request is matched
// against the cassette. NewHTTPResponder supplies the live half, so a
// broker in record or auto mode forwards misses to the real upstream.
//
// Failure mapping follows the broker's taxonomy: a replay miss becomes
// 404, a missing live responder in record mode becomes 502, anything
// else 500.
package httpproxy

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/interposehq/interpose/internal/broker"
	"github.com/interposehq/interpose/internal/tape"
)

// Chunk metadata keys written by NewHTTPResponder and honored by
// Handler when translating chunks back into an HTTP response.
const (
	MetaStatus      = "status"
	MetaContentType = "content-type"
)

// Handler translates HTTP requests into broker replays.
type Handler struct {
	broker       *broker.Broker
	logger       *slog.Logger
	matchHeaders []string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// WithMatchHeaders selects which request headers participate in
// matching. By default no headers are included, so incidental client
// headers (User-Agent, Accept-Encoding) do not fracture fingerprints.
func WithMatchHeaders(keys ...string) HandlerOption {
	return func(h *Handler) { h.matchHeaders = keys }
}

// NewHandler creates an HTTP handler over the given broker.
func NewHandler(b *broker.Broker, opts ...HandlerOption) *Handler {
	h := &Handler{
		broker: b,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	request := h.interactionRequest(r, body)
	h.logger.Info("intercepted request",
		"action", request.Action,
		"target", request.Target,
		"mode", h.broker.Mode().String(),
	)

	chunks, err := h.broker.Replay(r.Context(), request)
	switch {
	case err == nil:
	case broker.IsNotFound(err):
		h.logger.Warn("interaction not recorded", "action", request.Action, "target", request.Target)
		http.Error(w, "interaction not recorded in cassette", http.StatusNotFound)
		return
	case broker.IsResponderRequired(err):
		http.Error(w, "broker is in record mode but no live responder is configured", http.StatusBadGateway)
		return
	default:
		h.logger.Error("replay failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeChunks(w, chunks)
}

// interactionRequest translates a wire-level request into the
// structured form the broker matches on.
func (h *Handler) interactionRequest(r *http.Request, body []byte) tape.InteractionRequest {
	var headers tape.Pairs
	for _, key := range h.matchHeaders {
		for _, value := range r.Header.Values(key) {
			headers = append(headers, tape.Pair{Key: http.CanonicalHeaderKey(key), Value: value})
		}
	}

	// In proxy mode RequestURI carries the absolute target URL.
	return tape.InteractionRequest{
		Protocol: "http",
		Action:   r.Method,
		Target:   r.RequestURI,
		Headers:  headers,
		Body:     body,
	}
}

// writeChunks renders the recorded chunk sequence as an HTTP response.
// Status and content type come from the first chunk's metadata when
// present.
func writeChunks(w http.ResponseWriter, chunks []tape.ResponseChunk) {
	status := http.StatusOK
	if len(chunks) > 0 {
		if value, ok := chunks[0].Metadata.Get(MetaStatus); ok {
			if parsed, err := strconv.Atoi(value); err == nil {
				status = parsed
			}
		}
		if value, ok := chunks[0].Metadata.Get(MetaContentType); ok {
			w.Header().Set("Content-Type", value)
		}
	}
	w.WriteHeader(status)
	for _, chunk := range chunks {
		w.Write(chunk.Data)
	}
}
