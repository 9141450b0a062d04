package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/store"
)

// openStore opens the database named by --db.
func openStore(opts *RootOptions) (*store.Store, error) {
	if opts.Database == "" {
		return nil, NewExitError(ExitCommandError, "no database: set --db or CREASE_DB_PATH")
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// resolveMatch picks the match a command acts on: the --match flag, then
// CREASE_MATCH_ID, then the only match in the database.
func resolveMatch(ctx context.Context, st *store.Store, opts *RootOptions, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if opts.Env.MatchID != "" {
		return opts.Env.MatchID, nil
	}
	matches, err := st.ListMatches(ctx)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to list matches", err)
	}
	if len(matches) != 1 {
		return "", &ExitError{
			Code:    ExitCommandError,
			Message: fmt.Sprintf("%s: --match is required when the database holds %d matches", ErrCodeNoMatch, len(matches)),
		}
	}
	return matches[0].ID, nil
}

// restoreEngine rebuilds the engine of a stored match with its undo
// history.
func restoreEngine(ctx context.Context, st *store.Store, matchID string, opts ...engine.Option) (*engine.Engine, error) {
	live, history, err := st.Load(ctx, matchID)
	if err != nil {
		return nil, storeError(err)
	}
	return engine.Restore(live, append(opts, engine.WithHistory(history))...), nil
}

// storeError maps store failures to exit errors.
func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrMatchNotFound):
		return WrapExitError(ExitCommandError, ErrCodeUnknownMatch, err)
	case errors.Is(err, store.ErrNothingToUndo):
		return WrapExitError(ExitFailure, ErrCodeNothingUndo, err)
	default:
		return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
	}
}
