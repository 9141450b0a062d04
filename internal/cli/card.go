package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/scorecard"
	"github.com/roach88/crease/internal/store"
)

// ReadOptions holds flags shared by the read-only commands.
type ReadOptions struct {
	*RootOptions
	MatchID string
}

// CardResult is the JSON payload of the card command.
type CardResult struct {
	Card  scorecard.Card     `json:"card"`
	Rates scorecard.RunRates `json:"rates"`
}

// NewCardCommand creates the card command.
func NewCardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "card",
		Short: "Print the scorecard of a stored match",
		Long: `Print batting and bowling cards for every innings played so far,
with the live run rate and, when chasing, the required rate.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLiveState(opts, cmd, func(f *OutputFormatter, s ir.MatchState) error {
				card := scorecard.Build(s)
				rates := scorecard.Rates(s)
				if f.JSON() {
					return f.Encode(CLIResponse{Status: "ok", Data: CardResult{Card: card, Rates: rates}, MatchID: s.MatchID})
				}
				if err := scorecard.Render(f.Writer, card); err != nil {
					return err
				}
				printRates(f, rates)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.MatchID, "match", "", "match id (default $CREASE_MATCH_ID or the only stored match)")

	return cmd
}

// NewMVPCommand creates the mvp command.
func NewMVPCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "mvp",
		Short:         "Rank players by batting, bowling and fielding points",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLiveState(opts, cmd, func(f *OutputFormatter, s ir.MatchState) error {
				entries := scorecard.MVP(s, s.Config.Teams)
				if f.JSON() {
					return f.Encode(CLIResponse{Status: "ok", Data: entries, MatchID: s.MatchID})
				}
				return scorecard.RenderMVP(f.Writer, entries)
			})
		},
	}

	cmd.Flags().StringVar(&opts.MatchID, "match", "", "match id (default $CREASE_MATCH_ID or the only stored match)")

	return cmd
}

// withLiveState opens the store, reads the newest snapshot of the selected
// match and hands it to fn.
func withLiveState(opts *ReadOptions, cmd *cobra.Command, fn func(*OutputFormatter, ir.MatchState) error) error {
	ctx := context.Background()

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	matchID, err := resolveMatch(ctx, st, opts.RootOptions, opts.MatchID)
	if err != nil {
		return err
	}
	state, err := latestState(ctx, st, matchID)
	if err != nil {
		return storeError(err)
	}
	return fn(newFormatter(opts.RootOptions, cmd), state)
}

func printRates(f *OutputFormatter, r scorecard.RunRates) {
	fmt.Fprintf(f.Writer, "\nRun rate %.2f", r.RunRate)
	if r.Chasing {
		fmt.Fprintf(f.Writer, ", need %d", r.RunsRequired)
		if r.BallsRemaining > 0 {
			fmt.Fprintf(f.Writer, " off %d (%.2f per over)", r.BallsRemaining, r.RequiredRate)
		}
	}
	fmt.Fprintln(f.Writer)
}

// TimelineOptions holds flags for the timeline command.
type TimelineOptions struct {
	ReadOptions
	Innings int  // 0 means the live innings
	Latest  bool // newest ball first
}

// TimelineResult holds the complete timeline output.
type TimelineResult struct {
	MatchID  string                    `json:"match_id"`
	Innings  int                       `json:"innings"`
	Balls    []scorecard.TimelineEntry `json:"balls"`
	OverRate engine.OverRateReport     `json:"over_rate"`
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TimelineOptions{ReadOptions: ReadOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "List the balls of an innings",
		Long: `List every ball and penalty of one innings with its over.ball label,
display class and commentary, followed by the over-rate position of the
live innings.

Examples:
  crease timeline
  crease timeline --innings 1 --latest
  crease timeline --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLiveState(&opts.ReadOptions, cmd, func(f *OutputFormatter, s ir.MatchState) error {
				return outputTimeline(f, buildTimeline(s, opts.Innings, opts.Latest, time.Now()))
			})
		},
	}

	cmd.Flags().StringVar(&opts.MatchID, "match", "", "match id (default $CREASE_MATCH_ID or the only stored match)")
	cmd.Flags().IntVar(&opts.Innings, "innings", 0, "innings number (default: live innings)")
	cmd.Flags().BoolVar(&opts.Latest, "latest", false, "newest ball first")

	return cmd
}

func buildTimeline(s ir.MatchState, innings int, latest bool, now time.Time) TimelineResult {
	if innings == 0 {
		innings = s.Innings
	}
	order := scorecard.Chronological
	if latest {
		order = scorecard.Latest
	}
	balls := scorecard.Timeline(s, innings, order)
	if balls == nil {
		balls = []scorecard.TimelineEntry{}
	}
	return TimelineResult{
		MatchID:  s.MatchID,
		Innings:  innings,
		Balls:    balls,
		OverRate: engine.OverRate(s, now.UnixMilli()),
	}
}

func outputTimeline(f *OutputFormatter, r TimelineResult) error {
	if f.JSON() {
		return f.Encode(CLIResponse{Status: "ok", Data: r, MatchID: r.MatchID})
	}

	w := f.Writer
	if len(r.Balls) == 0 {
		fmt.Fprintf(w, "No balls in innings %d.\n", r.Innings)
		return nil
	}

	fmt.Fprintf(w, "Innings %d: %d ball(s)\n\n", r.Innings, len(r.Balls))
	for _, b := range r.Balls {
		fmt.Fprintf(w, "%5s  %-5s %s\n", b.Label, b.Symbol, b.Commentary)
	}
	if r.OverRate.Behind {
		fmt.Fprintf(w, "\nOver rate: %d balls bowled, %d expected\n", r.OverRate.Balls, r.OverRate.ExpectedBalls)
	}
	return nil
}

// latestState returns the live state of a stored match.
func latestState(ctx context.Context, st *store.Store, matchID string) (ir.MatchState, error) {
	snap, err := st.Latest(ctx, matchID)
	if err != nil {
		return ir.MatchState{}, err
	}
	return snap.State, nil
}
