package httpproxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/interposehq/interpose/internal/broker"
	"github.com/interposehq/interpose/internal/tape"
)

// NewHTTPResponder builds a live responder that performs the real
// upstream HTTP request described by an InteractionRequest: Action is
// the method, Target the URL, Headers and Body are sent as-is. The
// response body is captured as a single sequence-0 chunk carrying the
// status code and content type in its metadata.
//
// A nil client uses http.DefaultClient. Timeouts and cancellation are
// the caller's concern, via the client or the context.
func NewHTTPResponder(client *http.Client) broker.LiveResponder {
	if client == nil {
		client = http.DefaultClient
	}

	return func(ctx context.Context, request tape.InteractionRequest) ([]tape.ResponseChunk, error) {
		httpReq, err := http.NewRequestWithContext(ctx, request.Action, request.Target, bytes.NewReader(request.Body))
		if err != nil {
			return nil, fmt.Errorf("build upstream request: %w", err)
		}
		for _, pair := range request.Headers {
			httpReq.Header.Add(pair.Key, pair.Value)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("upstream request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read upstream response: %w", err)
		}

		metadata := tape.Pairs{
			{Key: MetaStatus, Value: strconv.Itoa(resp.StatusCode)},
		}
		if contentType := resp.Header.Get("Content-Type"); contentType != "" {
			metadata = append(metadata, tape.Pair{Key: MetaContentType, Value: contentType})
		}

		return []tape.ResponseChunk{{
			Data:     body,
			Sequence: 0,
			Metadata: metadata,
		}}, nil
	}
}
