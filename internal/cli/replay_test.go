package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "crease.db")

	out, err := execute(t, "--db", db, "replay")
	require.NoError(t, err)
	assert.Contains(t, out, "No matches found in database.")

	out, err = execute(t, "--db", db, "--format", "json", "replay")
	require.NoError(t, err)
	resp, result := decodeData[ReplayResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, result.Matches)
	assert.Equal(t, 0, result.TotalMatches)
}

func TestReplay_ScoredMatchVerifies(t *testing.T) {
	db := newMatch(t, "m1")
	openInnings(t, db)
	for _, args := range [][]string{{"delivery", "--runs", "2"}, {"wicket", "--wicket-kind", "Caught", "--fielder", "a7"}, {"undo"}, {"delivery", "--runs", "4"}} {
		_, err := execute(t, append([]string{"--db", db, "score"}, args...)...)
		require.NoError(t, err)
	}

	out, err := execute(t, "--db", db, "--verbose", "replay")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Match: m1")
	assert.Contains(t, out, "Hashes ok, events ok, fold ok, deterministic ok, identity ok")
	assert.Contains(t, out, "✓ All matches verified")

	out, err = execute(t, "--db", db, "--format", "json", "replay", "--match", "m1")
	require.NoError(t, err)
	_, result := decodeData[ReplayResult](t, out)
	require.Len(t, result.Matches, 1)
	assert.True(t, result.AllDeterministic)
	assert.True(t, result.Matches[0].OK())
}

func TestReplay_UnknownMatch(t *testing.T) {
	db := newMatch(t, "m1")

	_, err := execute(t, "--db", db, "replay", "--match", "other")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUnknownMatch)
}
