package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
)

// CreateMatch inserts the match row and its seq 0 snapshot.
// Returns ErrMatchExists when the id is already used.
func (s *Store) CreateMatch(ctx context.Context, state ir.MatchState) error {
	cfgJSON, err := marshalConfig(state.Config)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create match: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO matches (id, name, format, config)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, state.MatchID, state.Config.Name, string(state.Config.Format), cfgJSON)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("create match %s: %w", state.MatchID, ErrMatchExists)
	}

	if err := insertSnapshot(ctx, tx, 0, ir.Command{}, state); err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	if err := replaceEvents(ctx, tx, state); err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create match: commit: %w", err)
	}

	slog.Debug("match created", "match_id", state.MatchID, "format", state.Config.Format)
	return nil
}

// AppendSnapshot stores the state produced by cmd as the next seq and
// rewrites the event rows to match it. Returns the new seq.
func (s *Store) AppendSnapshot(ctx context.Context, cmd ir.Command, state ir.MatchState) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("append snapshot: begin tx: %w", err)
	}
	defer tx.Rollback()

	seq, err := latestSeq(ctx, tx, state.MatchID)
	if err != nil {
		return 0, fmt.Errorf("append snapshot: %w", err)
	}
	seq++
	if err := insertSnapshot(ctx, tx, seq, cmd, state); err != nil {
		return 0, fmt.Errorf("append snapshot: %w", err)
	}
	if err := replaceEvents(ctx, tx, state); err != nil {
		return 0, fmt.Errorf("append snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("append snapshot: commit: %w", err)
	}
	return seq, nil
}

// PopSnapshot deletes the newest snapshot and returns the one before it,
// which becomes the live state. The seq 0 snapshot is never removed:
// popping it returns ErrNothingToUndo.
func (s *Store) PopSnapshot(ctx context.Context, matchID string) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("pop snapshot: begin tx: %w", err)
	}
	defer tx.Rollback()

	seq, err := latestSeq(ctx, tx, matchID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("pop snapshot: %w", err)
	}
	if seq == 0 {
		return Snapshot{}, ErrNothingToUndo
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE match_id = ? AND seq = ?`, matchID, seq); err != nil {
		return Snapshot{}, fmt.Errorf("pop snapshot: %w", err)
	}
	prev, err := readSnapshot(ctx, tx, matchID, seq-1)
	if err != nil {
		return Snapshot{}, fmt.Errorf("pop snapshot: %w", err)
	}
	if err := replaceEvents(ctx, tx, prev.State); err != nil {
		return Snapshot{}, fmt.Errorf("pop snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("pop snapshot: commit: %w", err)
	}

	slog.Debug("snapshot popped", "match_id", matchID, "seq", seq)
	return prev, nil
}

// Record aligns the stored history with an engine whose undo stack holds
// depth states after cmd produced state. A committed command appends one
// snapshot, an undo pops one, and a command that changed nothing (an edit
// of an unknown ball, an undo with nothing to undo) writes nothing.
func (s *Store) Record(ctx context.Context, cmd ir.Command, state ir.MatchState, depth int) error {
	seq, err := s.LatestSeq(ctx, state.MatchID)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}

	switch want := int64(depth); {
	case seq == want-1:
		_, err = s.AppendSnapshot(ctx, cmd, state)
	case seq == want+1:
		_, err = s.PopSnapshot(ctx, state.MatchID)
	case seq == want:
		return nil
	default:
		return fmt.Errorf("record %s: stored seq %d does not follow undo depth %d", cmd.Type, seq, depth)
	}
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

// Recorder returns an engine.Sink that records every command accepted by
// e. It must be registered on the loop that drives e.
func (s *Store) Recorder(e *engine.Engine) engine.Sink {
	return engine.SinkFunc(func(ctx context.Context, cmd ir.Command, state ir.MatchState) error {
		return s.Record(ctx, cmd, state, e.UndoDepth())
	})
}

// DeleteMatch removes a match with its snapshots and events.
func (s *Store) DeleteMatch(ctx context.Context, matchID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, matchID)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("delete match %s: %w", matchID, ErrMatchNotFound)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func latestSeq(ctx context.Context, q execer, matchID string) (int64, error) {
	var seq sql.NullInt64
	err := q.QueryRowContext(ctx, `SELECT MAX(seq) FROM snapshots WHERE match_id = ?`, matchID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("latest seq: %w", err)
	}
	if !seq.Valid {
		return 0, fmt.Errorf("latest seq %s: %w", matchID, ErrMatchNotFound)
	}
	return seq.Int64, nil
}

func insertSnapshot(ctx context.Context, q execer, seq int64, cmd ir.Command, state ir.MatchState) error {
	stateJSON, hash, err := marshalState(state)
	if err != nil {
		return err
	}
	cmdJSON := "{}"
	if cmd.Type != "" {
		if cmdJSON, err = marshalCommand(cmd); err != nil {
			return err
		}
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO snapshots (match_id, seq, command_type, command, state, state_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`, state.MatchID, seq, string(cmd.Type), cmdJSON, stateJSON, hash)
	if err != nil {
		return fmt.Errorf("insert snapshot %d: %w", seq, err)
	}
	return nil
}

// replaceEvents rewrites the event rows of a match from state's log.
// Edits replay whole innings, so rows are replaced rather than patched.
func replaceEvents(ctx context.Context, q execer, state ir.MatchState) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM events WHERE match_id = ?`, state.MatchID); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	for _, e := range state.Events {
		data, hash, err := marshalEvent(e)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO events (match_id, timestamp, innings, kind, event, event_hash)
			VALUES (?, ?, ?, ?, ?, ?)
		`, state.MatchID, e.Timestamp, e.Innings, string(e.Kind), data, hash)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", e.Timestamp, err)
		}
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
