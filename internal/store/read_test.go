package store

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
)

func TestLoad_RestoresUndoHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sc := newScorer(t, s, "m1")
	sc.run(append(opening(), runs(1), runs(2))...)

	live, history, err := s.Load(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, 3, live.Score)

	// an engine rebuilt from the store undoes the same way as the original
	restored := engine.Restore(live, engine.WithHistory(history))
	require.True(t, restored.Undo())
	require.True(t, sc.eng.Undo())
	assert.Equal(t, ir.MustStateHash(sc.eng.Snapshot()), ir.MustStateHash(restored.Snapshot()))
}

func TestLoad_Unknown(t *testing.T) {
	s := createTestStore(t)
	_, _, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestSnapshots_Ordered(t *testing.T) {
	s := createTestStore(t)
	sc := newScorer(t, s, "m1")
	sc.run(append(opening(), runs(4))...)

	snaps, err := s.Snapshots(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, snaps, 4)

	var types []ir.CommandType
	for i, snap := range snaps {
		assert.Equal(t, int64(i), snap.Seq)
		types = append(types, snap.Command.Type)
	}
	want := []ir.CommandType{"", ir.CmdStartInnings, ir.CmdSelectPlayers, ir.CmdDelivery}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("command types mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshots_EmptyForUnknown(t *testing.T) {
	s := createTestStore(t)
	snaps, err := s.Snapshots(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, snaps)
	assert.Empty(t, snaps)
}

func TestReadEvents_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	sc := newScorer(t, s, "m1")
	state := sc.run(append(opening(),
		ir.Command{Type: ir.CmdDelivery, Runs: 4, Pitch: &ir.Coord{X: 3, Y: 9}, Commentary: "driven"},
		ir.Command{Type: ir.CmdDelivery, ExtraKind: ir.ExtraWide, ExtraRuns: 1},
	)...)

	events, err := s.ReadEvents(context.Background(), "m1")
	require.NoError(t, err)
	if diff := cmp.Diff(state.Events, events); diff != "" {
		t.Errorf("events mismatch (-state +stored):\n%s", diff)
	}
}

func TestListMatches(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	newScorer(t, s, "m2").run(opening()...)
	newScorer(t, s, "m1")

	matches, err := s.ListMatches(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "m1", matches[0].ID)
	assert.Equal(t, int64(0), matches[0].Seq)
	assert.Equal(t, "m2", matches[1].ID)
	assert.Equal(t, int64(2), matches[1].Seq)
	assert.Equal(t, ir.FormatT20, matches[1].Format)
}

func TestReadConfig_Unknown(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadConfig(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
