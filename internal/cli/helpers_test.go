package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/interposehq/interpose/internal/cassettestore"
	"github.com/interposehq/interpose/internal/tape"
)

// executeCommand runs the root command with the given args and returns
// captured stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

// writeTestCassette persists a small two-interaction cassette as JSON
// and returns its path.
func writeTestCassette(t *testing.T, dir string) string {
	t.Helper()

	get, err := tape.RecordInteraction(tape.InteractionRequest{
		Protocol: "http",
		Action:   "GET",
		Target:   "/users",
		Headers:  tape.Pairs{{Key: "Accept", Value: "application/json"}},
		Body:     []byte{},
	}, []tape.ResponseChunk{
		{Data: []byte(`[{"id":1}]`), Sequence: 0, Metadata: tape.Pairs{{Key: "status", Value: "200"}}},
	}, tape.Pairs{})
	require.NoError(t, err)

	post, err := tape.RecordInteraction(tape.InteractionRequest{
		Protocol: "http",
		Action:   "POST",
		Target:   "/users",
		Headers:  tape.Pairs{},
		Body:     []byte(`{"name":"ada"}`),
	}, []tape.ResponseChunk{
		{Data: []byte(`created`), Sequence: 0, Metadata: tape.Pairs{}},
	}, tape.Pairs{})
	require.NoError(t, err)

	path := filepath.Join(dir, "cassette.json")
	store := cassettestore.NewJSONFileStore(path)
	require.NoError(t, store.Save(context.Background(), tape.NewCassette(get, post)))
	return path
}

// tamperCassette rewrites one interaction's fingerprint so the file
// stays schema-valid but fails model validation.
func tamperCassette(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	interactions := doc["interactions"].([]any)
	first := interactions[0].(map[string]any)
	fp := first["fingerprint"].(map[string]any)
	value := fp["value"].(string)
	fp["value"] = "0000" + value[4:]

	tampered, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, tampered, 0o644))
}
