package engine

import (
	"fmt"

	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/rules"
)

// Env carries the inputs of one pipeline run that do not come from state.
type Env struct {
	Timestamp  int64 // logical timestamp stamped on the event
	WallMillis int64 // wall time for the innings timer; 0 leaves it untouched
}

// Apply runs one partial event through the delivery pipeline and returns
// the new state with the fully populated event appended. s is not
// modified.
//
// Markers short-circuit: they assign identities and append without
// touching score or balls (a retired-out marker still counts a wicket).
// Deliveries go through timer, bowler, over, batter and materialization in
// that order.
func Apply(s ir.MatchState, partial ir.BallEvent, env Env) ir.MatchState {
	next := s.Clone()
	e := partial.Clone()
	e.Timestamp = env.Timestamp
	e.Innings = next.Innings
	if e.Kind == "" {
		e.Kind = ir.EventDelivery
	}

	switch {
	case e.Kind.IsMarker():
		applyMarker(&next, &e)
	case e.Kind == ir.EventPenalty:
		applyPenalty(&next, &e)
	default:
		timerStep(&next, env.WallMillis)
		bowlerStep(&next, &e)
		stampBatters(&next, &e)
		normalizeExtras(&e)
		before := next.Balls
		overStep(&next, &e)
		batterStep(&next, &e)
		materialize(&next, &e, before)
	}

	next.Events = append(next.Events, e)
	return next
}

// materialize fills the derived fields of a delivery. A legal ball is
// indexed from the post-increment count (the sixth ball stays on its own
// over); an illegal one from the count before it.
func materialize(s *ir.MatchState, e *ir.BallEvent, before int) {
	if e.ExtraKind.IsLegal() {
		e.Over, e.Ball = ir.OverIndex(s.Balls)
	} else {
		e.Over, e.Ball = before/ir.BallsPerOver, before%ir.BallsPerOver
	}
	e.CreditBowler = e.IsWicket && ir.LookupDismissal(e.WicketKind).CreditsBowler
	e.TeamScore = s.Score
	if !e.CustomCommentary {
		e.Commentary = Commentary(*e)
	}
}

func applyMarker(s *ir.MatchState, e *ir.BallEvent) {
	e.Runs, e.ExtraRuns, e.ExtraKind = 0, 0, ir.ExtraNone
	e.IsWicket, e.CreditBowler = false, false

	switch e.Kind {
	case ir.EventRetirement:
		clearSlot(s, e.DismissedID)
		if e.Retirement == ir.RetiredOut {
			addWicket(s)
		}
	case ir.EventSubstitution:
		replaceSlot(s, e.OutgoingID, e.IncomingID)
	}
	// an assigned role is set even when empty, which vacates the slot
	if e.StrikerID != "" || e.Assigns(ir.RoleStriker) {
		s.StrikerID = e.StrikerID
	}
	if e.NonStrikerID != "" || e.Assigns(ir.RoleNonStriker) {
		s.NonStrikerID = e.NonStrikerID
	}
	if e.BowlerID != "" || e.Assigns(ir.RoleBowler) {
		s.BowlerID = e.BowlerID
	}

	e.Over, e.Ball = s.Balls/ir.BallsPerOver, s.Balls%ir.BallsPerOver
	e.TeamScore = s.Score
	if !e.CustomCommentary {
		e.Commentary = Commentary(*e)
	}
}

func applyPenalty(s *ir.MatchState, e *ir.BallEvent) {
	e.Runs, e.ExtraKind = 0, ir.ExtraNone
	e.IsWicket, e.CreditBowler = false, false
	if e.ExtraRuns < 0 {
		e.ExtraRuns = 0
	}
	s.Score += e.ExtraRuns
	e.Over, e.Ball = s.Balls/ir.BallsPerOver, s.Balls%ir.BallsPerOver
	e.TeamScore = s.Score
	if !e.CustomCommentary {
		e.Commentary = Commentary(*e)
	}
}

// Commentary synthesizes the default text for an event.
func Commentary(e ir.BallEvent) string {
	switch e.Kind {
	case ir.EventIdentity:
		return "Players selected"
	case ir.EventRetirement:
		if e.Retirement == ir.RetiredOut {
			return fmt.Sprintf("%s retired out", e.DismissedID)
		}
		return fmt.Sprintf("%s retired hurt", e.DismissedID)
	case ir.EventBowlerChange:
		return fmt.Sprintf("Bowler changed to %s", e.BowlerID)
	case ir.EventSubstitution:
		return fmt.Sprintf("%s replaces %s", e.IncomingID, e.OutgoingID)
	case ir.EventPenalty:
		return fmt.Sprintf("%d penalty %s", e.ExtraRuns, runsWord(e.ExtraRuns))
	}

	if e.IsWicket {
		if e.WicketKind == "" {
			return "WICKET!"
		}
		return "WICKET! " + string(e.WicketKind)
	}
	n := e.TotalRuns()
	text := fmt.Sprintf("%d %s", n, runsWord(n))
	if label := e.ExtraKind.Label(); label != "" {
		text += " (" + label + ")"
	}
	return text
}

func runsWord(n int) string {
	if n == 1 {
		return "run"
	}
	return "runs"
}

// Totals is the result of folding a log.
type Totals struct {
	Score   int `json:"score"`
	Wickets int `json:"wickets"`
	Balls   int `json:"balls"`
}

// Fold re-derives score, wickets and legal balls from one innings' events.
// Wickets are clamped to the format ceiling the same way the pipeline
// clamps them.
func Fold(cfg ir.MatchConfig, events []ir.BallEvent) Totals {
	var t Totals
	ceiling := rules.WicketCeiling(cfg)
	for _, e := range events {
		t.Score += e.TotalRuns()
		if e.IsLegal() {
			t.Balls++
		}
		if e.CountsAsWicket() && t.Wickets < ceiling {
			t.Wickets++
		}
	}
	return t
}

// CheckFold returns an error when folding the live innings disagrees with
// the live counters.
func CheckFold(s ir.MatchState) error {
	got := Fold(s.Config, s.InningsEvents(s.Innings))
	want := Totals{Score: s.Score, Wickets: s.Wickets, Balls: s.Balls}
	if got != want {
		return fmt.Errorf("fold mismatch in innings %d: log gives %+v, state has %+v", s.Innings, got, want)
	}
	return nil
}
