package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/store"
)

// NewOptions holds flags for the new command.
type NewOptions struct {
	*RootOptions
	MatchID string

	// IDGenerator allows overriding the match id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

// NewMatchResult is the payload of a created match.
type NewMatchResult struct {
	MatchID string `json:"match_id"`
	Name    string `json:"name"`
	Format  string `json:"format"`
	Teams   int    `json:"teams"`
	Players int    `json:"players"`
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new <match.cue>",
		Short: "Create a match from a CUE definition",
		Long: `Compile and validate a CUE match definition and store a new match.

The match starts before the first innings; score it with 'crease score'.
The id is a UUIDv7 unless --id is given.

Examples:
  crease new --db ./crease.db ./final.cue
  crease new --db ./crease.db ./final.cue --id final-2024`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MatchID, "id", "", "match id (default: generated UUIDv7)")

	return cmd
}

func runNew(opts *NewOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, errs := LoadMatch(path)
	if len(errs) > 0 {
		_ = formatter.Error(errorCode(errs[0]), errs[0].Error(), nil)
		if cfg == nil {
			return WrapExitError(ExitCommandError, "failed to load match", errs[0])
		}
		return WrapExitError(ExitFailure, fmt.Sprintf("invalid match: %d error(s)", len(errs)), errs[0])
	}

	matchID := opts.MatchID
	if matchID == "" {
		gen := opts.IDGenerator
		if gen == nil {
			gen = engine.UUIDv7Generator{}
		}
		matchID = gen.Generate()
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	state := engine.NewState(matchID, *cfg)
	if err := st.CreateMatch(context.Background(), state); err != nil {
		if errors.Is(err, store.ErrMatchExists) {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "match id already used", err)
		}
		return WrapExitError(ExitCommandError, "failed to create match", err)
	}
	formatter.VerboseLog("Stored match %s in %s", matchID, opts.Database)

	players := 0
	for _, t := range cfg.Teams {
		players += len(t.Players)
	}
	result := NewMatchResult{
		MatchID: matchID,
		Name:    cfg.Name,
		Format:  string(cfg.Format),
		Teams:   len(cfg.Teams),
		Players: players,
	}
	if formatter.JSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: result, MatchID: matchID})
	}
	fmt.Fprintf(formatter.Writer, "✓ Created match %s\n", matchID)
	fmt.Fprintf(formatter.Writer, "  %s (%s), %d players\n", cfg.Name, cfg.Format, players)
	return nil
}
