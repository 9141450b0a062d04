package store

import (
	"context"
	"fmt"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
)

// ReplayResult reports the consistency checks run over one stored match.
type ReplayResult struct {
	MatchID   string `json:"match_id"`
	Snapshots int    `json:"snapshots"`
	Events    int    `json:"events"`
	StateHash string `json:"state_hash"`

	HashesOK      bool `json:"hashes_ok"`     // every stored hash matches its content
	EventsOK      bool `json:"events_ok"`     // event rows equal the newest snapshot's log
	FoldOK        bool `json:"fold_ok"`       // folding the log reproduces the counters
	Deterministic bool `json:"deterministic"` // replaying twice yields the same hash
	Identity      bool `json:"identity"`      // replay reproduces the stored state

	Errors []string `json:"errors,omitempty"`
}

// OK reports whether every check passed.
func (r ReplayResult) OK() bool {
	return r.HashesOK && r.EventsOK && r.FoldOK && r.Deterministic && r.Identity
}

func (r *ReplayResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// VerifyMatch re-reads a match and checks it against itself:
//   - each snapshot's stored hash against its decoded state
//   - the event rows against the newest snapshot's log
//   - engine.CheckFold on every snapshot
//   - engine.Replay of the newest state, twice, against the stored hash
//
// Failures are reported in the result; the error is reserved for I/O.
func (s *Store) VerifyMatch(ctx context.Context, matchID string) (ReplayResult, error) {
	res := ReplayResult{MatchID: matchID, HashesOK: true, FoldOK: true}

	snaps, err := s.Snapshots(ctx, matchID)
	if err != nil {
		return res, fmt.Errorf("verify %s: %w", matchID, err)
	}
	if len(snaps) == 0 {
		return res, fmt.Errorf("verify %s: %w", matchID, ErrMatchNotFound)
	}
	res.Snapshots = len(snaps)

	for _, snap := range snaps {
		got, err := ir.StateHash(snap.State)
		if err != nil {
			return res, fmt.Errorf("verify %s: %w", matchID, err)
		}
		if got != snap.StateHash {
			res.HashesOK = false
			res.fail("seq %d: stored hash %s, content hashes to %s", snap.Seq, snap.StateHash, got)
		}
		if err := engine.CheckFold(snap.State); err != nil {
			res.FoldOK = false
			res.fail("seq %d: %v", snap.Seq, err)
		}
	}

	latest := snaps[len(snaps)-1]
	res.StateHash = latest.StateHash

	events, err := s.ReadEvents(ctx, matchID)
	if err != nil {
		res.fail("events: %v", err)
	} else {
		res.Events = len(events)
		res.EventsOK = sameLog(events, latest.State.Events)
		if !res.EventsOK {
			res.fail("event rows (%d) differ from snapshot %d log (%d)", len(events), latest.Seq, len(latest.State.Events))
		}
	}

	first := ir.MustStateHash(engine.Replay(latest.State))
	second := ir.MustStateHash(engine.Replay(latest.State))
	res.Deterministic = first == second
	if !res.Deterministic {
		res.fail("replay is not deterministic: %s then %s", first, second)
	}
	res.Identity = first == latest.StateHash
	if !res.Identity {
		res.fail("replay hashes to %s, stored state is %s", first, latest.StateHash)
	}
	return res, nil
}

// VerifyAll runs VerifyMatch over every stored match.
func (s *Store) VerifyAll(ctx context.Context) ([]ReplayResult, error) {
	matches, err := s.ListMatches(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]ReplayResult, 0, len(matches))
	for _, m := range matches {
		res, err := s.VerifyMatch(ctx, m.ID)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func sameLog(a, b []ir.BallEvent) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ha, err := ir.EventHash(a[i])
		if err != nil {
			return false
		}
		hb, err := ir.EventHash(b[i])
		if err != nil || ha != hb {
			return false
		}
	}
	return true
}
