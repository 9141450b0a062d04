package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/ir"
)

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "testdata", "matches", "t20.cue"))
	require.NoError(t, err)

	assert.Equal(t, "Harbour Cup Final", cfg.Name)
	assert.Equal(t, ir.FormatT20, cfg.Format)
	require.Len(t, cfg.Teams, 2)
	assert.Equal(t, "home", cfg.Teams[0].ID)
	assert.Len(t, cfg.Teams[0].Players, 11)
	assert.Equal(t, "Anil Rao", cfg.Teams[0].Players[0].Name)
	assert.Empty(t, Validate(cfg))
}

func TestLoadFileValidationFailures(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "testdata", "matches", "bad_squad.cue"))
	require.NoError(t, err)

	codes := map[string]bool{}
	for _, v := range Validate(cfg) {
		codes[v.Code] = true
	}
	assert.True(t, codes[ErrSquadSizeMismatch])
	assert.True(t, codes[ErrDuplicatePlayer])
}

func TestLoadFileSyntaxError(t *testing.T) {
	_, err := LoadFile(filepath.Join("..", "..", "testdata", "matches", "broken.cue"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoadFailed), "got %v", err)
}

func TestLoadFileMissingMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.cue")
	require.NoError(t, os.WriteFile(path, []byte("other: 1\n"), 0o644))

	_, err := LoadFile(path)
	var ce *CompileError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "match", ce.Field)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoadFailed))
}
