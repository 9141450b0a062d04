package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var t20Match = filepath.Join("..", "..", "testdata", "matches", "t20.cue")

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CREASE_REDIS_ADDR", "")
	t.Setenv("CREASE_MATCH_ID", "")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// newMatch creates a match from the T20 fixture in a fresh database.
func newMatch(t *testing.T, id string) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "crease.db")
	_, err := execute(t, "--db", db, "new", t20Match, "--id", id)
	require.NoError(t, err)
	return db
}

// openInnings starts the first innings of the only match in db.
func openInnings(t *testing.T, db string) {
	t.Helper()
	_, err := execute(t, "--db", db, "score", "start_innings", "--batting", "home", "--bowling", "away")
	require.NoError(t, err)
	_, err = execute(t, "--db", db, "score", "select_players", "--striker", "h1", "--non-striker", "h2", "--bowler", "a1")
	require.NoError(t, err)
}

// decodeData unmarshals a JSON response and its data payload.
func decodeData[T any](t *testing.T, out string) (CLIResponse, T) {
	t.Helper()
	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	var data T
	if len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, &data))
	}
	return raw.CLIResponse, data
}
