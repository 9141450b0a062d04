package store

import (
	"context"
	"fmt"

	"github.com/roach88/crease/internal/ir"
)

// Snapshot is one stored row of a match's command history.
type Snapshot struct {
	MatchID   string
	Seq       int64
	Command   ir.Command // zero for seq 0
	State     ir.MatchState
	StateHash string
}

// MatchSummary is one row of ListMatches.
type MatchSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Format    ir.Format `json:"format"`
	Seq       int64     `json:"seq"`
	StateHash string    `json:"state_hash"`
}

// LatestSeq returns the seq of the newest snapshot of a match.
func (s *Store) LatestSeq(ctx context.Context, matchID string) (int64, error) {
	return latestSeq(ctx, s.db, matchID)
}

// Latest returns the newest snapshot, which holds the live state.
func (s *Store) Latest(ctx context.Context, matchID string) (Snapshot, error) {
	seq, err := latestSeq(ctx, s.db, matchID)
	if err != nil {
		return Snapshot{}, err
	}
	return readSnapshot(ctx, s.db, matchID, seq)
}

// Snapshots returns every stored snapshot of a match ordered by seq.
//
// Returns empty slice (not nil) if the match has no snapshots.
func (s *Store) Snapshots(ctx context.Context, matchID string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT match_id, seq, command, state, state_hash
		FROM snapshots
		WHERE match_id = ?
		ORDER BY seq ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}

// Load returns the live state and the undo history before it, oldest
// first, ready for engine.Restore and engine.WithHistory.
func (s *Store) Load(ctx context.Context, matchID string) (ir.MatchState, []ir.MatchState, error) {
	snaps, err := s.Snapshots(ctx, matchID)
	if err != nil {
		return ir.MatchState{}, nil, fmt.Errorf("load %s: %w", matchID, err)
	}
	if len(snaps) == 0 {
		return ir.MatchState{}, nil, fmt.Errorf("load %s: %w", matchID, ErrMatchNotFound)
	}
	history := make([]ir.MatchState, len(snaps)-1)
	for i := range history {
		history[i] = snaps[i].State
	}
	return snaps[len(snaps)-1].State, history, nil
}

// ReadEvents returns the stored ball log of a match ordered by timestamp.
func (s *Store) ReadEvents(ctx context.Context, matchID string) ([]ir.BallEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event, event_hash
		FROM events
		WHERE match_id = ?
		ORDER BY timestamp ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []ir.BallEvent{}
	for rows.Next() {
		var data, hash string
		if err := rows.Scan(&data, &hash); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e, err := unmarshalEvent(data)
		if err != nil {
			return nil, err
		}
		got, err := ir.EventHash(e)
		if err != nil {
			return nil, err
		}
		if got != hash {
			return nil, fmt.Errorf("event %d: stored hash %s does not match content %s", e.Timestamp, hash, got)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadConfig returns the stored match definition.
func (s *Store) ReadConfig(ctx context.Context, matchID string) (ir.MatchConfig, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT config FROM matches WHERE id = ?`, matchID).Scan(&data)
	if isNoRows(err) {
		return ir.MatchConfig{}, fmt.Errorf("read config %s: %w", matchID, ErrMatchNotFound)
	}
	if err != nil {
		return ir.MatchConfig{}, fmt.Errorf("read config: %w", err)
	}
	return unmarshalConfig(data)
}

// ListMatches returns every stored match with its newest seq, ordered by id.
func (s *Store) ListMatches(ctx context.Context) ([]MatchSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.name, m.format, sn.seq, sn.state_hash
		FROM matches m
		JOIN snapshots sn ON sn.match_id = m.id
		WHERE sn.seq = (SELECT MAX(seq) FROM snapshots WHERE match_id = m.id)
		ORDER BY m.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	out := []MatchSummary{}
	for rows.Next() {
		var m MatchSummary
		var format string
		if err := rows.Scan(&m.ID, &m.Name, &format, &m.Seq, &m.StateHash); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.Format = ir.Format(format)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return out, nil
}

func readSnapshot(ctx context.Context, q execer, matchID string, seq int64) (Snapshot, error) {
	row := q.QueryRowContext(ctx, `
		SELECT match_id, seq, command, state, state_hash
		FROM snapshots
		WHERE match_id = ? AND seq = ?
	`, matchID, seq)
	snap, err := scanSnapshot(row)
	if isNoRows(err) {
		return Snapshot{}, fmt.Errorf("snapshot %s/%d: %w", matchID, seq, ErrMatchNotFound)
	}
	return snap, err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var snap Snapshot
	var cmdJSON, stateJSON string
	if err := row.Scan(&snap.MatchID, &snap.Seq, &cmdJSON, &stateJSON, &snap.StateHash); err != nil {
		if isNoRows(err) {
			return Snapshot{}, err
		}
		return Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	cmd, err := unmarshalCommand(cmdJSON)
	if err != nil {
		return Snapshot{}, err
	}
	state, err := unmarshalState(stateJSON)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Command = cmd
	snap.State = state
	return snap, nil
}
