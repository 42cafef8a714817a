package cassettestore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/interposehq/interpose/internal/tape"
)

// Config holds store configuration assembled from options.
type Config struct {
	// CreateIfMissing makes Load return an empty cassette when the
	// snapshot does not exist yet, instead of a LoadError.
	CreateIfMissing bool
}

// Option is a functional option shared by the store constructors.
type Option func(*Config)

// WithCreateIfMissing makes Load treat a missing snapshot as an empty
// cassette.
func WithCreateIfMissing() Option {
	return func(c *Config) { c.CreateIfMissing = true }
}

// JSONFileStore persists a cassette as a single JSON document. This is
// the reference store implementation.
type JSONFileStore struct {
	path            string
	createIfMissing bool
}

// NewJSONFileStore creates a store backed by the file at path. The
// file is not touched until Load or Save.
func NewJSONFileStore(path string, opts ...Option) *JSONFileStore {
	config := &Config{}
	for _, opt := range opts {
		opt(config)
	}
	return &JSONFileStore{
		path:            path,
		createIfMissing: config.CreateIfMissing,
	}
}

// Path returns the snapshot location.
func (s *JSONFileStore) Path() string { return s.path }

// Load reads and decodes the snapshot. A missing file returns an empty
// cassette when the store was built WithCreateIfMissing, and a
// *LoadError otherwise. Malformed content and interaction validation
// failures also surface as *LoadError with the cause preserved.
func (s *JSONFileStore) Load(ctx context.Context) (*tape.Cassette, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && s.createIfMissing {
			return tape.NewCassette(), nil
		}
		return nil, &LoadError{Path: s.path, Err: err}
	}

	var cassette tape.Cassette
	if err := json.Unmarshal(data, &cassette); err != nil {
		return nil, &LoadError{Path: s.path, Err: err}
	}
	return &cassette, nil
}

// Save writes the full snapshot, creating parent directories as
// needed. The output is deterministic for a given cassette value.
func (s *JSONFileStore) Save(ctx context.Context, cassette *tape.Cassette) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &SaveError{Path: s.path, Err: err}
	}

	data, err := json.MarshalIndent(cassette, "", "  ")
	if err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	return nil
}
