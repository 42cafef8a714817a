package cassettestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/interposehq/interpose/internal/tape"
)

// YAMLFileStore persists a cassette as a single YAML document. Byte
// payloads are encoded as !!binary nodes, so arbitrary bodies round
// trip losslessly.
type YAMLFileStore struct {
	path            string
	createIfMissing bool
}

// NewYAMLFileStore creates a store backed by the file at path.
func NewYAMLFileStore(path string, opts ...Option) *YAMLFileStore {
	config := &Config{}
	for _, opt := range opts {
		opt(config)
	}
	return &YAMLFileStore{
		path:            path,
		createIfMissing: config.CreateIfMissing,
	}
}

// Path returns the snapshot location.
func (s *YAMLFileStore) Path() string { return s.path }

// Load reads and decodes the snapshot with the same failure contract
// as JSONFileStore.Load.
func (s *YAMLFileStore) Load(ctx context.Context) (*tape.Cassette, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && s.createIfMissing {
			return tape.NewCassette(), nil
		}
		return nil, &LoadError{Path: s.path, Err: err}
	}

	var cassette tape.Cassette
	if err := yaml.Unmarshal(data, &cassette); err != nil {
		return nil, &LoadError{Path: s.path, Err: err}
	}
	return &cassette, nil
}

// Save writes the full snapshot, creating parent directories as needed.
func (s *YAMLFileStore) Save(ctx context.Context, cassette *tape.Cassette) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &SaveError{Path: s.path, Err: err}
	}

	data, err := yaml.Marshal(cassette)
	if err != nil {
		return &SaveError{Path: s.path, Err: err}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	return nil
}
