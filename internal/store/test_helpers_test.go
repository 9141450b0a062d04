package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/testutil"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// scorer drives an engine and records every command in the store the way
// the CLI does.
type scorer struct {
	t     *testing.T
	store *Store
	eng   *engine.Engine
}

func newScorer(t *testing.T, s *Store, matchID string) *scorer {
	t.Helper()
	clock := testutil.NewDeterministicClock()
	eng := engine.New(matchID, testutil.Config(ir.FormatT20), engine.WithWallClock(clock.Now))
	if err := s.CreateMatch(context.Background(), eng.Snapshot()); err != nil {
		t.Fatalf("CreateMatch() failed: %v", err)
	}
	return &scorer{t: t, store: s, eng: eng}
}

func (sc *scorer) run(cmds ...ir.Command) ir.MatchState {
	sc.t.Helper()
	var state ir.MatchState
	for _, cmd := range cmds {
		var err error
		state, err = sc.eng.Execute(cmd)
		if err != nil {
			sc.t.Fatalf("Execute(%s) failed: %v", cmd.Type, err)
		}
		if err := sc.store.Record(context.Background(), cmd, state, sc.eng.UndoDepth()); err != nil {
			sc.t.Fatalf("Record(%s) failed: %v", cmd.Type, err)
		}
	}
	return state
}

func opening() []ir.Command {
	return []ir.Command{
		{Type: ir.CmdStartInnings, BattingTeamID: "home", BowlingTeamID: "away"},
		{Type: ir.CmdSelectPlayers, StrikerID: "h1", NonStrikerID: "h2", BowlerID: "a1"},
	}
}

func runs(n int) ir.Command {
	return ir.Command{Type: ir.CmdDelivery, Runs: n}
}
