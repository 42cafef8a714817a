package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/interposehq/interpose/internal/tape"
)

// LiveResponder produces a real response when the broker decides to
// forward. It is invoked synchronously and must return an ordered,
// non-empty chunk sequence. The broker applies no timeout of its own;
// callers wanting cancellation wrap ctx.
type LiveResponder func(ctx context.Context, request tape.InteractionRequest) ([]tape.ResponseChunk, error)

// CassetteStore is the durable load/save contract consumed by the
// broker. Implementations live in internal/cassettestore.
type CassetteStore interface {
	Load(ctx context.Context) (*tape.Cassette, error)
	Save(ctx context.Context, cassette *tape.Cassette) error
}

// MetadataTokenKey is the metadata key under which the broker records
// the token of a freshly recorded interaction.
const MetadataTokenKey = "id"

// Config holds broker configuration assembled from options.
type Config struct {
	Mode      Mode
	Responder LiveResponder
	Store     CassetteStore
	Tokens    TokenGenerator
}

// Option is a functional option for configuring a Broker.
type Option func(*Config)

// WithMode sets the operating mode. The default is ModeReplay.
func WithMode(mode Mode) Option {
	return func(c *Config) { c.Mode = mode }
}

// WithLiveResponder sets the responder invoked on forwarding decisions.
func WithLiveResponder(responder LiveResponder) Option {
	return func(c *Config) { c.Responder = responder }
}

// WithStore sets the store used to persist the cassette after each
// recorded interaction.
func WithStore(store CassetteStore) Option {
	return func(c *Config) { c.Store = store }
}

// WithTokenGenerator overrides the generator used to stamp recorded
// interactions. Tests use FixedGenerator for deterministic cassettes.
func WithTokenGenerator(tokens TokenGenerator) Option {
	return func(c *Config) { c.Tokens = tokens }
}

// Broker serves replay/record/auto decisions over a cassette.
//
// The cassette reference is the only mutable state; it is swapped
// wholesale when a recording appends an interaction. All access is
// serialized by one mutex, so a Broker is safe for concurrent use.
type Broker struct {
	mu        sync.Mutex
	cassette  *tape.Cassette
	mode      Mode
	responder LiveResponder
	store     CassetteStore
	tokens    TokenGenerator
}

// New creates a broker over the given cassette. A nil cassette starts
// empty.
func New(cassette *tape.Cassette, opts ...Option) *Broker {
	config := &Config{
		Mode:   ModeReplay,
		Tokens: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(config)
	}

	if cassette == nil {
		cassette = tape.NewCassette()
	}

	return &Broker{
		cassette:  cassette,
		mode:      config.Mode,
		responder: config.Responder,
		store:     config.Store,
		tokens:    config.Tokens,
	}
}

// Cassette returns the broker's current cassette value. The returned
// cassette is immutable and safe to read concurrently; it will not
// reflect recordings made after the call.
func (b *Broker) Cassette() *tape.Cassette {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cassette
}

// Mode returns the operating mode fixed at construction.
func (b *Broker) Mode() Mode { return b.mode }

// Replay serves the response for a request according to the mode
// decision table (see package doc).
//
// When forwarding occurs, the live responder's output is collected in
// full and the new interaction is appended and persisted before any
// chunk is returned, so a caller who abandons consumption early still
// leaves the recording complete.
//
// Expected failures are returned as *ReplayError values; branch on
// IsNotFound / IsResponderRequired.
func (b *Broker) Replay(ctx context.Context, request tape.InteractionRequest) ([]tape.ResponseChunk, error) {
	fingerprint, err := request.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("fingerprint request: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Record mode skips the lookup result on purpose: it always
	// prefers live truth and treats the cassette as write-only history.
	if b.mode != ModeRecord {
		if recorded, ok := b.cassette.Find(fingerprint); ok {
			return copyChunks(recorded.ResponseChunks), nil
		}
	}

	if b.mode == ModeReplay {
		return nil, NewNotFoundError(request)
	}
	if b.responder == nil {
		if b.mode == ModeRecord {
			return nil, NewResponderRequiredError(request)
		}
		// Auto without a responder degrades to replay-only semantics.
		return nil, NewNotFoundError(request)
	}

	chunks, err := b.responder(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("live responder: %w", err)
	}

	metadata := tape.Pairs{{Key: MetadataTokenKey, Value: b.tokens.Generate()}}
	interaction, err := tape.NewInteraction(request, fingerprint, chunks, metadata)
	if err != nil {
		return nil, fmt.Errorf("record interaction: %w", err)
	}

	next := b.cassette.Append(interaction)
	b.cassette = next
	if b.store != nil {
		if err := b.store.Save(ctx, next); err != nil {
			// The in-memory recording is kept; the caller can retry
			// persistence via Cassette() and the store.
			return nil, err
		}
	}

	return copyChunks(chunks), nil
}

// copyChunks hands each caller its own slice so consumers cannot
// mutate the recorded sequence.
func copyChunks(chunks []tape.ResponseChunk) []tape.ResponseChunk {
	out := make([]tape.ResponseChunk, len(chunks))
	copy(out, chunks)
	return out
}
