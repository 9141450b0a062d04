package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	MatchID string // optional - specific match only
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Matches          []store.ReplayResult `json:"matches"`
	TotalMatches     int                  `json:"total_matches"`
	AllDeterministic bool                 `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Verify stored matches replay deterministically",
		Long: `Re-read every stored match and verify it against itself.

For each match the stored hashes are recomputed, the event rows are
compared with the newest snapshot, every snapshot's ball log is folded
back into its counters, and the live state is replayed twice from its
log and compared with the stored state hash.

Exit codes:
  0 - All matches verified
  1 - Verification failed (differences detected)
  2 - Command error (database not found, unknown match)

Examples:
  crease replay --db ./crease.db
  crease replay --db ./crease.db --match final-2024
  crease replay --db ./crease.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MatchID, "match", "", "replay specific match only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	var results []store.ReplayResult
	if opts.MatchID != "" {
		res, err := st.VerifyMatch(ctx, opts.MatchID)
		if err != nil {
			return storeError(err)
		}
		results = []store.ReplayResult{res}
	} else {
		results, err = st.VerifyAll(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to verify matches", err)
		}
	}

	if results == nil {
		results = []store.ReplayResult{}
	}
	result := ReplayResult{
		Matches:          results,
		TotalMatches:     len(results),
		AllDeterministic: true,
	}
	for _, r := range results {
		if !r.OK() {
			result.AllDeterministic = false
		}
	}

	if formatter.JSON() {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(f *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "replay verification failed",
		}
	}

	if err := f.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(f *OutputFormatter, result ReplayResult) error {
	w := f.Writer

	if result.TotalMatches == 0 {
		fmt.Fprintln(w, "No matches found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d match(es)\n", result.TotalMatches)
	fmt.Fprintln(w)

	for _, m := range result.Matches {
		status := "✓"
		if !m.OK() {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Match: %s\n", status, m.MatchID)
		fmt.Fprintf(w, "  Snapshots: %d, events: %d\n", m.Snapshots, m.Events)
		if f.Verbose {
			fmt.Fprintf(w, "  State hash: %s\n", m.StateHash)
			fmt.Fprintf(w, "  Hashes %s, events %s, fold %s, deterministic %s, identity %s\n",
				check(m.HashesOK), check(m.EventsOK), check(m.FoldOK), check(m.Deterministic), check(m.Identity))
		}
		for _, e := range m.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All matches verified")
		return nil
	}

	fmt.Fprintln(w, "✗ Replay verification failed")
	return NewExitError(ExitFailure, "replay verification failed")
}

func check(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAILED"
}
