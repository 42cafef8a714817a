package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/interposehq/interpose/internal/broker"
	"github.com/interposehq/interpose/internal/cassettestore"
)

// Store kinds accepted by the --store flag. Empty means "infer from
// the cassette path extension".
var ValidStoreKinds = []string{"json", "yaml", "sqlite"}

// inferStoreKind maps a cassette path to a store kind by extension.
// Unrecognized extensions fall back to JSON, the reference format.
func inferStoreKind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	default:
		return "json"
	}
}

// openStore constructs the cassette store for a path. The returned
// closer releases any open handle (a no-op for the file stores).
func openStore(path, kind string, createIfMissing bool) (broker.CassetteStore, func() error, error) {
	if kind == "" {
		kind = inferStoreKind(path)
	}

	var opts []cassettestore.Option
	if createIfMissing {
		opts = append(opts, cassettestore.WithCreateIfMissing())
	}

	switch kind {
	case "json":
		return cassettestore.NewJSONFileStore(path, opts...), func() error { return nil }, nil
	case "yaml":
		return cassettestore.NewYAMLFileStore(path, opts...), func() error { return nil }, nil
	case "sqlite":
		store, err := cassettestore.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q: must be one of %v", kind, ValidStoreKinds)
	}
}
