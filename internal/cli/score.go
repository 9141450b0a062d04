package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/mirror"
	"github.com/roach88/crease/internal/store"
)

// ScoreOptions holds flags for the score command. Every field of
// ir.Command has a flag; only those a command type reads matter.
type ScoreOptions struct {
	*RootOptions
	MatchID string

	Runs            int
	ExtraRuns       int
	ExtraKind       string
	WicketKind      string
	DismissedID     string
	FielderID       string
	AssistFielderID string
	Commentary      string
	Timestamp       int64
	Patch           string // JSON ir.BallPatch
	OldID           string
	NewID           string
	Role            string
	PlayerID        string
	Retirement      string
	OutID           string
	InID            string
	StrikerID       string
	NonStrikerID    string
	BowlerID        string
	BattingTeamID   string
	BowlingTeamID   string
	Target          int
	FollowOn        bool
	Complete        bool
	Result          string
	Overs           int
	Seconds         int
	Metadata        string // JSON ir.MetadataPatch
}

// ScoreResult summarizes the live state after a command.
type ScoreResult struct {
	MatchID    string `json:"match_id"`
	Command    string `json:"command"`
	Innings    int    `json:"innings"`
	Score      int    `json:"score"`
	Wickets    int    `json:"wickets"`
	Overs      string `json:"overs"`
	Striker    string `json:"striker,omitempty"`
	NonStriker string `json:"non_striker,omitempty"`
	Bowler     string `json:"bowler,omitempty"`
	Last       string `json:"last,omitempty"` // commentary of the newest event
	Changed    bool   `json:"changed"`
	StateHash  string `json:"state_hash"`
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScoreOptions{RootOptions: rootOpts}

	types := make([]string, len(ir.CommandTypes))
	for i, t := range ir.CommandTypes {
		types[i] = string(t)
	}

	cmd := &cobra.Command{
		Use:   "score <type>",
		Short: "Apply one scoring command to a stored match",
		Long: `Apply one scoring command to a stored match and store the result.

Command types:
  ` + strings.Join(types, ", ") + `

Each command stores the resulting snapshot, so 'crease undo' and the undo
command type both step back through the same history. When
CREASE_REDIS_ADDR is set the new state is also published to the mirror.

Exit codes:
  0 - Command applied (or a no-op such as an edit of an unknown ball)
  1 - Command rejected (unknown type, missing or invalid field)
  2 - Command error (database, unknown match)

Examples:
  crease score start_innings --batting home --bowling away
  crease score select_players --striker h1 --non-striker h2 --bowler a1
  crease score delivery --runs 4
  crease score delivery --extra wide
  crease score wicket --wicket-kind Caught --fielder a7
  crease score edit --ts 12 --patch '{"runs": 6}'
  crease score retire --player h3 --retirement hurt`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     types,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.command(ir.CommandType(args[0]), cmd)
			if err != nil {
				return err
			}
			return runScore(opts, c, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.MatchID, "match", "", "match id (default $CREASE_MATCH_ID or the only stored match)")
	f.IntVar(&opts.Runs, "runs", 0, "runs off the bat, or penalty runs")
	f.IntVar(&opts.ExtraRuns, "extra-runs", 0, "extra runs beyond the wide or no-ball penalty")
	f.StringVar(&opts.ExtraKind, "extra", "", "extra kind: wide, no_ball, bye, leg_bye")
	f.StringVar(&opts.WicketKind, "wicket-kind", "", `dismissal, e.g. "Bowled", "Caught", "Run Out"`)
	f.StringVar(&opts.DismissedID, "dismissed", "", "dismissed batter (default striker)")
	f.StringVar(&opts.FielderID, "fielder", "", "fielder credited with the dismissal")
	f.StringVar(&opts.AssistFielderID, "assist", "", "assisting fielder (run out)")
	f.StringVar(&opts.Commentary, "commentary", "", "custom commentary")
	f.Int64Var(&opts.Timestamp, "ts", 0, "timestamp of the ball to edit")
	f.StringVar(&opts.Patch, "patch", "", "edit patch as JSON")
	f.StringVar(&opts.OldID, "old-id", "", "identity to correct")
	f.StringVar(&opts.NewID, "new-id", "", "corrected identity")
	f.StringVar(&opts.Role, "role", "", "restrict a correction to striker, non_striker or bowler")
	f.StringVar(&opts.PlayerID, "player", "", "player to retire")
	f.StringVar(&opts.Retirement, "retirement", "", "retirement kind: hurt, out")
	f.StringVar(&opts.OutID, "out", "", "player leaving (substitute)")
	f.StringVar(&opts.InID, "in", "", "player joining (substitute)")
	f.StringVar(&opts.StrikerID, "striker", "", "striker")
	f.StringVar(&opts.NonStrikerID, "non-striker", "", "non-striker")
	f.StringVar(&opts.BowlerID, "bowler", "", "bowler")
	f.StringVar(&opts.BattingTeamID, "batting", "", "batting team id")
	f.StringVar(&opts.BowlingTeamID, "bowling", "", "bowling team id")
	f.IntVar(&opts.Target, "target", 0, "runs required to win")
	f.BoolVar(&opts.FollowOn, "follow-on", false, "innings is a follow-on")
	f.BoolVar(&opts.Complete, "complete", false, "end_innings also completes the match")
	f.StringVar(&opts.Result, "result", "", "result text")
	f.IntVar(&opts.Overs, "overs", 0, "overs lost (negative restores)")
	f.IntVar(&opts.Seconds, "seconds", 0, "timer allowance in seconds")
	f.StringVar(&opts.Metadata, "metadata", "", "metadata patch as JSON")

	return cmd
}

// command builds the ir.Command from the flags.
func (o *ScoreOptions) command(typ ir.CommandType, cmd *cobra.Command) (ir.Command, error) {
	c := ir.Command{
		Type:            typ,
		Runs:            o.Runs,
		ExtraRuns:       o.ExtraRuns,
		ExtraKind:       ir.ExtraKind(o.ExtraKind),
		WicketKind:      ir.DismissalKind(o.WicketKind),
		DismissedID:     o.DismissedID,
		FielderID:       o.FielderID,
		AssistFielderID: o.AssistFielderID,
		Commentary:      o.Commentary,
		Timestamp:       o.Timestamp,
		OldID:           o.OldID,
		NewID:           o.NewID,
		Role:            ir.Role(o.Role),
		PlayerID:        o.PlayerID,
		Retirement:      ir.RetirementKind(o.Retirement),
		OutID:           o.OutID,
		InID:            o.InID,
		StrikerID:       o.StrikerID,
		NonStrikerID:    o.NonStrikerID,
		BowlerID:        o.BowlerID,
		BattingTeamID:   o.BattingTeamID,
		BowlingTeamID:   o.BowlingTeamID,
		FollowOn:        o.FollowOn,
		Complete:        o.Complete,
		Result:          o.Result,
		Overs:           o.Overs,
		Seconds:         o.Seconds,
	}
	if cmd.Flags().Changed("target") {
		target := o.Target
		c.Target = &target
	}
	if o.Patch != "" {
		c.Patch = &ir.BallPatch{}
		if err := json.Unmarshal([]byte(o.Patch), c.Patch); err != nil {
			return ir.Command{}, WrapExitError(ExitCommandError, "invalid --patch JSON", err)
		}
	}
	if o.Metadata != "" {
		c.Metadata = &ir.MetadataPatch{}
		if err := json.Unmarshal([]byte(o.Metadata), c.Metadata); err != nil {
			return ir.Command{}, WrapExitError(ExitCommandError, "invalid --metadata JSON", err)
		}
	}
	return c, nil
}

func runScore(opts *ScoreOptions, c ir.Command, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	matchID, err := resolveMatch(ctx, st, opts.RootOptions, opts.MatchID)
	if err != nil {
		return err
	}
	eng, err := restoreEngine(ctx, st, matchID)
	if err != nil {
		return err
	}

	before := ir.MustStateHash(eng.Snapshot())
	state, err := eng.Execute(c)
	if err != nil {
		var ce *engine.CommandError
		if errors.As(err, &ce) {
			_ = formatter.Error(string(ce.Code), ce.Error(), nil)
			return WrapExitError(ExitFailure, "command rejected", err)
		}
		return WrapExitError(ExitCommandError, "command failed", err)
	}

	if err := st.Record(ctx, c, state, eng.UndoDepth()); err != nil {
		return WrapExitError(ExitCommandError, "failed to store command", err)
	}
	slog.Debug("command stored", "match_id", matchID, "command", c.Type, "ts", state.LastTimestamp())

	if opts.Env.MirrorEnabled() {
		publishState(ctx, opts.RootOptions, c, state)
	}

	result := summarize(c.Type, state)
	result.Changed = result.StateHash != before
	if formatter.JSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: result, MatchID: matchID})
	}
	printSummary(formatter, result)
	return nil
}

// publishState mirrors one state to redis. Failures are logged only.
func publishState(ctx context.Context, opts *RootOptions, c ir.Command, state ir.MatchState) {
	client, err := mirror.NewRedisClient(ctx, mirror.RedisConfig{Addr: opts.Env.RedisAddr, Channel: opts.Env.MirrorChannel})
	if err != nil {
		slog.Warn("mirror unavailable", "addr", opts.Env.RedisAddr, "error", err)
		return
	}
	defer client.Close()
	_ = mirror.NewPublisher(client, opts.Env.MirrorChannel).Notify(ctx, c, state)
}

func summarize(typ ir.CommandType, s ir.MatchState) ScoreResult {
	r := ScoreResult{
		MatchID:    s.MatchID,
		Command:    string(typ),
		Innings:    s.Innings,
		Score:      s.Score,
		Wickets:    s.Wickets,
		Overs:      ir.OversString(s.Balls),
		Striker:    s.StrikerID,
		NonStriker: s.NonStrikerID,
		Bowler:     s.BowlerID,
		StateHash:  ir.MustStateHash(s),
	}
	if n := len(s.Events); n > 0 {
		r.Last = s.Events[n-1].Commentary
	}
	return r
}

func printSummary(f *OutputFormatter, r ScoreResult) {
	mark := "✓"
	if !r.Changed {
		mark = "-"
	}
	fmt.Fprintf(f.Writer, "%s %s: %d/%d (%s ov)\n", mark, r.Command, r.Score, r.Wickets, r.Overs)
	if r.Last != "" {
		fmt.Fprintf(f.Writer, "  last: %s\n", r.Last)
	}
	if r.Striker != "" || r.Bowler != "" {
		fmt.Fprintf(f.Writer, "  striker %s, non-striker %s, bowler %s\n", orDash(r.Striker), orDash(r.NonStriker), orDash(r.Bowler))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// UndoOptions holds flags for the undo command.
type UndoOptions struct {
	*RootOptions
	MatchID string
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UndoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Step a stored match back one command",
		Long: `Remove the newest stored snapshot of a match, restoring the state before
the last command. The initial snapshot is never removed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUndo(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MatchID, "match", "", "match id (default $CREASE_MATCH_ID or the only stored match)")

	return cmd
}

func runUndo(opts *UndoOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	matchID, err := resolveMatch(ctx, st, opts.RootOptions, opts.MatchID)
	if err != nil {
		return err
	}
	snap, err := st.PopSnapshot(ctx, matchID)
	if err != nil {
		if errors.Is(err, store.ErrNothingToUndo) {
			_ = formatter.Error(ErrCodeNothingUndo, "nothing to undo", nil)
		}
		return storeError(err)
	}

	if opts.Env.MirrorEnabled() {
		publishState(ctx, opts.RootOptions, ir.Command{Type: ir.CmdUndo}, snap.State)
	}

	result := summarize(ir.CmdUndo, snap.State)
	result.Changed = true
	if formatter.JSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: result, MatchID: matchID})
	}
	printSummary(formatter, result)
	return nil
}
