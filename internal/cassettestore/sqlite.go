package cassettestore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/interposehq/interpose/internal/tape"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore persists a cassette snapshot in a SQLite database.
//
// The contract matches the file stores: Save rewrites the whole
// snapshot in one transaction, Load reads interactions back in
// recorded order and rebuilds the cassette. SQLite creates the
// database file on open, so Load on a fresh store returns an empty
// cassette; the CreateIfMissing flag has no effect here.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite creates or opens a SQLite-backed store at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *SQLiteStore) Path() string { return s.path }

// Load reads all interactions in recorded order and rebuilds the
// cassette. Decode and validation failures surface as *LoadError.
func (s *SQLiteStore) Load(ctx context.Context) (*tape.Cassette, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload
		FROM interactions
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, &LoadError{Path: s.path, Err: fmt.Errorf("query interactions: %w", err)}
	}
	defer rows.Close()

	var interactions []tape.Interaction
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, &LoadError{Path: s.path, Err: fmt.Errorf("scan interaction: %w", err)}
		}
		var interaction tape.Interaction
		if err := json.Unmarshal([]byte(payload), &interaction); err != nil {
			return nil, &LoadError{Path: s.path, Err: fmt.Errorf("decode interaction %d: %w", len(interactions), err)}
		}
		interactions = append(interactions, interaction)
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Path: s.path, Err: fmt.Errorf("iterate interactions: %w", err)}
	}

	return tape.NewCassette(interactions...), nil
}

// Save rewrites the whole snapshot in one transaction: delete all rows,
// then insert every interaction at its position. Either the new
// snapshot lands in full or the previous one survives.
func (s *SQLiteStore) Save(ctx context.Context, cassette *tape.Cassette) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &SaveError{Path: s.path, Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM interactions`); err != nil {
		return &SaveError{Path: s.path, Err: fmt.Errorf("clear snapshot: %w", err)}
	}

	for i, interaction := range cassette.Interactions() {
		payload, err := json.Marshal(interaction)
		if err != nil {
			return &SaveError{Path: s.path, Err: fmt.Errorf("encode interaction %d: %w", i, err)}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO interactions (position, fingerprint, payload)
			VALUES (?, ?, ?)
		`, i, interaction.Fingerprint.Value(), string(payload))
		if err != nil {
			return &SaveError{Path: s.path, Err: fmt.Errorf("insert interaction %d: %w", i, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &SaveError{Path: s.path, Err: fmt.Errorf("commit snapshot: %w", err)}
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
