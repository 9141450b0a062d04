package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/testutil"
)

// liveState is an innings in progress with A on strike, B at the other end
// and X bowling.
func liveState() ir.MatchState {
	return ir.MatchState{
		MatchID:       "m1",
		Config:        testutil.Config(ir.FormatT20),
		Innings:       1,
		BattingTeamID: "home",
		BowlingTeamID: "away",
		StrikerID:     "A",
		NonStrikerID:  "B",
		BowlerID:      "X",
	}
}

// applyAll runs partial events through the pipeline with timestamps 1..n.
func applyAll(s ir.MatchState, events ...ir.BallEvent) ir.MatchState {
	ts := s.LastTimestamp()
	for _, e := range events {
		ts++
		s = Apply(s, e, Env{Timestamp: ts})
	}
	return s
}

func last(s ir.MatchState) ir.BallEvent {
	return s.Events[len(s.Events)-1]
}

func TestApply_StrikeRotation(t *testing.T) {
	var events []ir.BallEvent
	for _, r := range []int{1, 2, 0, 4, 6, 1} {
		events = append(events, ir.BallEvent{Runs: r})
	}
	s := applyAll(liveState(), events...)

	// Odd runs swap after balls 1 and 6; the end-of-over swap follows ball 6.
	assert.Equal(t, "B", s.StrikerID, "original non-striker faces the next over")
	assert.Equal(t, "A", s.NonStrikerID)
	assert.Equal(t, 6, s.Balls)
	assert.Equal(t, 14, s.Score)

	assert.Equal(t, 0, last(s).Over)
	assert.Equal(t, 6, last(s).Ball, "sixth ball stays on the finished over")
	assert.Equal(t, "B", last(s).StrikerID, "stamped striker is the batter who faced")

	s = applyAll(s, ir.BallEvent{})
	assert.Equal(t, 1, last(s).Over)
	assert.Equal(t, 1, last(s).Ball)
}

func TestApply_WideNeverCreditsBatOrBall(t *testing.T) {
	s := applyAll(liveState(), ir.BallEvent{ExtraKind: ir.ExtraWide, ExtraRuns: 2})
	e := last(s)

	assert.Equal(t, 3, s.Score)
	assert.Equal(t, 0, s.Balls)
	assert.Equal(t, 0, e.Runs)
	assert.Equal(t, 2, e.ExtraRuns)
	assert.Equal(t, "A", s.StrikerID, "two physical runs do not rotate strike")
	assert.Equal(t, "3 runs (Wide)", e.Commentary)
}

func TestApply_RunsOnWideMoveToExtras(t *testing.T) {
	s := applyAll(liveState(), ir.BallEvent{ExtraKind: ir.ExtraWide, Runs: 1})
	e := last(s)
	assert.Equal(t, 0, e.Runs)
	assert.Equal(t, 1, e.ExtraRuns)
	assert.Equal(t, 2, s.Score)
	assert.Equal(t, "B", s.StrikerID)
}

func TestApply_NoBallKeepsBatRuns(t *testing.T) {
	s := applyAll(liveState(), ir.BallEvent{ExtraKind: ir.ExtraNoBall, Runs: 4})
	e := last(s)
	assert.Equal(t, 5, s.Score)
	assert.Equal(t, 0, s.Balls)
	assert.Equal(t, 4, e.Runs)
	assert.Equal(t, "5 runs (No Ball)", e.Commentary)
}

func TestApply_ByeChangesStrikeNotBatter(t *testing.T) {
	s := applyAll(liveState(), ir.BallEvent{ExtraKind: ir.ExtraBye, Runs: 1})
	e := last(s)
	assert.Equal(t, 0, e.Runs)
	assert.Equal(t, 1, e.ExtraRuns)
	assert.Equal(t, 1, s.Balls)
	assert.Equal(t, "B", s.StrikerID)
	assert.Equal(t, "1 run (Bye)", e.Commentary)
}

func TestApply_IllegalBallIndexedFromPriorCount(t *testing.T) {
	s := applyAll(liveState(), ir.BallEvent{}, ir.BallEvent{}, ir.BallEvent{ExtraKind: ir.ExtraWide})
	assert.Equal(t, 0, last(s).Over)
	assert.Equal(t, 2, last(s).Ball)

	var rest []ir.BallEvent
	for i := 0; i < 4; i++ {
		rest = append(rest, ir.BallEvent{})
	}
	s = applyAll(s, rest...)
	s = applyAll(s, ir.BallEvent{ExtraKind: ir.ExtraNoBall})
	assert.Equal(t, 1, last(s).Over)
	assert.Equal(t, 0, last(s).Ball)
}

func TestApply_WicketCreditMatrix(t *testing.T) {
	s := applyAll(liveState(), ir.BallEvent{IsWicket: true, WicketKind: ir.DismissalRunOut, DismissedID: "B", FielderID: "F"})
	e := last(s)
	assert.Equal(t, 1, s.Wickets)
	assert.False(t, e.CreditBowler)
	assert.Equal(t, "A", s.StrikerID)
	assert.Empty(t, s.NonStrikerID, "run-out non-striker cleared from their slot")

	s = applyAll(liveState(), ir.BallEvent{IsWicket: true, WicketKind: ir.DismissalBowled})
	e = last(s)
	assert.Equal(t, 1, s.Wickets)
	assert.True(t, e.CreditBowler)
	assert.Equal(t, "A", e.DismissedID, "dismissed defaults to striker")
	assert.Empty(t, s.StrikerID)
	assert.Equal(t, "WICKET! Bowled", e.Commentary)
}

func TestApply_RetiredHurtDeliveryDoesNotCount(t *testing.T) {
	s := applyAll(liveState(), ir.BallEvent{IsWicket: true, WicketKind: ir.DismissalRetiredHurt})
	assert.Equal(t, 0, s.Wickets)
	assert.Empty(t, s.StrikerID)
}

func TestApply_NoEndOfOverSwapAfterWicket(t *testing.T) {
	var events []ir.BallEvent
	for i := 0; i < 5; i++ {
		events = append(events, ir.BallEvent{})
	}
	events = append(events, ir.BallEvent{IsWicket: true, WicketKind: ir.DismissalLBW})
	s := applyAll(liveState(), events...)

	assert.Empty(t, s.StrikerID)
	assert.Equal(t, "B", s.NonStrikerID)
}

func TestApply_WicketCeilingClamps(t *testing.T) {
	s := liveState()
	s.Config.SquadSize = 3 // ceiling 2
	for i := 0; i < 3; i++ {
		s = applyAll(s, ir.BallEvent{IsWicket: true, WicketKind: ir.DismissalCaught})
	}
	assert.Equal(t, 2, s.Wickets)
	assert.NoError(t, CheckFold(s))
}

func TestApply_MarkersNeverScore(t *testing.T) {
	s := applyAll(liveState(),
		ir.BallEvent{Kind: ir.EventIdentity, StrikerID: "C", Runs: 4, ExtraRuns: 2},
		ir.BallEvent{Kind: ir.EventBowlerChange, BowlerID: "Y"},
	)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 0, s.Balls)
	assert.Equal(t, "C", s.StrikerID)
	assert.Equal(t, "B", s.NonStrikerID)
	assert.Equal(t, "Y", s.BowlerID)
	assert.Len(t, s.Events, 2)
	assert.Equal(t, 0, s.Events[0].Runs, "marker scoring fields are zeroed")
	assert.Zero(t, s.Timer.StartedAt, "markers do not start the timer")
}

func TestApply_RetiredOutCountsWicket(t *testing.T) {
	s := applyAll(liveState(), ir.BallEvent{Kind: ir.EventRetirement, DismissedID: "A", Retirement: ir.RetiredOut})
	assert.Equal(t, 1, s.Wickets)
	assert.Empty(t, s.StrikerID)
	assert.Equal(t, "A retired out", last(s).Commentary)

	s = applyAll(liveState(), ir.BallEvent{Kind: ir.EventRetirement, DismissedID: "B", Retirement: ir.RetiredHurt})
	assert.Equal(t, 0, s.Wickets)
	assert.Empty(t, s.NonStrikerID)
}

func TestApply_Substitution(t *testing.T) {
	s := applyAll(liveState(), ir.BallEvent{Kind: ir.EventSubstitution, OutgoingID: "X", IncomingID: "Z"})
	assert.Equal(t, "Z", s.BowlerID)
	assert.Equal(t, "Z replaces X", last(s).Commentary)
}

func TestApply_Penalty(t *testing.T) {
	s := applyAll(liveState(), ir.BallEvent{}, ir.BallEvent{Kind: ir.EventPenalty, ExtraRuns: 5})
	assert.Equal(t, 5, s.Score)
	assert.Equal(t, 1, s.Balls)
	assert.Equal(t, "5 penalty runs", last(s).Commentary)
	assert.NoError(t, CheckFold(s))
}

func TestApply_CustomCommentaryKept(t *testing.T) {
	s := applyAll(liveState(), ir.BallEvent{Runs: 4, Commentary: "lofted over mid-on", CustomCommentary: true})
	assert.Equal(t, "lofted over mid-on", last(s).Commentary)
}

func TestApply_TimerStartsOnce(t *testing.T) {
	s := Apply(liveState(), ir.BallEvent{}, Env{Timestamp: 1, WallMillis: 1000})
	s = Apply(s, ir.BallEvent{}, Env{Timestamp: 2, WallMillis: 5000})
	assert.Equal(t, int64(1000), s.Timer.StartedAt)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s0 := applyAll(liveState(), ir.BallEvent{Runs: 1, Pitch: &ir.Coord{X: 1, Y: 1}})
	before := s0.Clone()
	partial := ir.BallEvent{Runs: 2, Shot: &ir.Coord{X: 5, Y: 5}}

	s1 := Apply(s0, partial, Env{Timestamp: 9})
	require.Len(t, s1.Events, 2)
	assert.Equal(t, before, s0)

	s1.Events[1].Shot.X = 99
	assert.Equal(t, 5, partial.Shot.X)
}

func TestFold(t *testing.T) {
	s := applyAll(liveState(),
		ir.BallEvent{Runs: 4},
		ir.BallEvent{ExtraKind: ir.ExtraWide},
		ir.BallEvent{IsWicket: true, WicketKind: ir.DismissalCaught},
		ir.BallEvent{Kind: ir.EventIdentity, StrikerID: "C"},
		ir.BallEvent{ExtraKind: ir.ExtraLegBye, ExtraRuns: 2},
	)
	got := Fold(s.Config, s.Events)
	assert.Equal(t, Totals{Score: 7, Wickets: 1, Balls: 3}, got)
	assert.NoError(t, CheckFold(s))

	s.Score++
	assert.Error(t, CheckFold(s))
}

func TestCommentary(t *testing.T) {
	assert.Equal(t, "0 runs", Commentary(ir.BallEvent{Kind: ir.EventDelivery}))
	assert.Equal(t, "1 run", Commentary(ir.BallEvent{Kind: ir.EventDelivery, Runs: 1}))
	assert.Equal(t, "2 runs (Leg Bye)", Commentary(ir.BallEvent{Kind: ir.EventDelivery, ExtraKind: ir.ExtraLegBye, ExtraRuns: 2}))
	assert.Equal(t, "WICKET!", Commentary(ir.BallEvent{Kind: ir.EventDelivery, IsWicket: true}))
	assert.Equal(t, "Players selected", Commentary(ir.BallEvent{Kind: ir.EventIdentity}))
}
