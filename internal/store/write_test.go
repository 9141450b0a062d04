package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/testutil"
)

func TestCreateMatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	state := engine.NewState("m1", testutil.Config(ir.FormatT20))

	require.NoError(t, s.CreateMatch(ctx, state))

	snap, err := s.Latest(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Seq)
	assert.Equal(t, ir.CommandType(""), snap.Command.Type)
	assert.Equal(t, ir.MustStateHash(state), snap.StateHash)

	cfg, err := s.ReadConfig(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, state.Config.Teams, cfg.Teams)
}

func TestCreateMatch_Duplicate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	state := engine.NewState("m1", testutil.Config(ir.FormatT20))

	require.NoError(t, s.CreateMatch(ctx, state))
	err := s.CreateMatch(ctx, state)
	assert.True(t, errors.Is(err, ErrMatchExists), "got %v", err)
}

func TestAppendSnapshot(t *testing.T) {
	s := createTestStore(t)
	sc := newScorer(t, s, "m1")
	state := sc.run(append(opening(), runs(1), runs(4))...)

	seq, err := s.LatestSeq(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), seq)

	snap, err := s.Latest(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, ir.CmdDelivery, snap.Command.Type)
	assert.Equal(t, 4, snap.Command.Runs)
	assert.Equal(t, 5, snap.State.Score)
	assert.Equal(t, ir.MustStateHash(state), snap.StateHash)

	events, err := s.ReadEvents(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, events, 3, "select marker and two deliveries")
	assert.Equal(t, state.Events[2].Timestamp, events[2].Timestamp)
}

func TestAppendSnapshot_UnknownMatch(t *testing.T) {
	s := createTestStore(t)
	state := engine.NewState("ghost", testutil.Config(ir.FormatT20))

	_, err := s.AppendSnapshot(context.Background(), runs(1), state)
	assert.True(t, errors.Is(err, ErrMatchNotFound), "got %v", err)
}

func TestPopSnapshot(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sc := newScorer(t, s, "m1")
	sc.run(append(opening(), runs(2), runs(6))...)

	prev, err := s.PopSnapshot(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), prev.Seq)
	assert.Equal(t, 2, prev.State.Score)

	events, err := s.ReadEvents(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, events, 2, "event rows follow the popped state")
}

func TestPopSnapshot_KeepsInitial(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	newScorer(t, s, "m1")

	_, err := s.PopSnapshot(ctx, "m1")
	assert.ErrorIs(t, err, ErrNothingToUndo)

	seq, err := s.LatestSeq(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)
}

func TestRecord_FollowsEngineUndo(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sc := newScorer(t, s, "m1")
	sc.run(append(opening(), runs(1), runs(3))...)

	state := sc.run(ir.Command{Type: ir.CmdUndo})
	assert.Equal(t, 1, state.Score)

	snap, err := s.Latest(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.Seq)
	assert.Equal(t, ir.MustStateHash(state), snap.StateHash)
}

func TestRecord_NoOpCommandsWriteNothing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sc := newScorer(t, s, "m1")

	sc.run(ir.Command{Type: ir.CmdUndo}) // nothing to undo
	sc.run(opening()...)
	sc.run(ir.Command{Type: ir.CmdEdit, Timestamp: 999, Patch: &ir.BallPatch{}})

	seq, err := s.LatestSeq(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}

func TestRecord_IdenticalStateStillRecorded(t *testing.T) {
	s := createTestStore(t)
	sc := newScorer(t, s, "m1")
	sc.run(opening()...)
	sc.run(ir.Command{Type: ir.CmdDeclare}, ir.Command{Type: ir.CmdDeclare})

	// two declares are two undo steps in the engine, so two rows here
	sc.run(ir.Command{Type: ir.CmdUndo})
	seq, err := s.LatestSeq(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)
	assert.Len(t, sc.eng.History(), 3)
}

func TestRecord_DetectsDrift(t *testing.T) {
	s := createTestStore(t)
	state := engine.NewState("m1", testutil.Config(ir.FormatT20))
	require.NoError(t, s.CreateMatch(context.Background(), state))

	err := s.Record(context.Background(), runs(1), state, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not follow undo depth 5")
}

func TestRecorder_FollowsLoop(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New("m1", testutil.Config(ir.FormatT20))
	require.NoError(t, s.CreateMatch(ctx, eng.Snapshot()))
	loop := engine.NewLoop(eng, s.Recorder(eng))
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	for _, cmd := range append(opening(), runs(2), runs(1), ir.Command{Type: ir.CmdUndo}) {
		_, err := loop.Submit(ctx, cmd)
		require.NoError(t, err)
	}
	loop.Stop()
	require.NoError(t, <-done)

	snap, err := s.Latest(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.Seq)
	assert.Equal(t, 2, snap.State.Score)
}

func TestDeleteMatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sc := newScorer(t, s, "m1")
	sc.run(append(opening(), runs(1))...)

	require.NoError(t, s.DeleteMatch(ctx, "m1"))

	_, err := s.Latest(ctx, "m1")
	assert.ErrorIs(t, err, ErrMatchNotFound)
	events, err := s.ReadEvents(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, events, "events cascade with the match")

	assert.ErrorIs(t, s.DeleteMatch(ctx, "m1"), ErrMatchNotFound)
}
