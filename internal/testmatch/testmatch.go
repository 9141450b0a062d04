// Package testmatch adds multi-day bookkeeping on top of the live match
// state: lead and trail, follow-on eligibility, the fourth-innings target
// and the overall result.
//
// Innings victories are not detected. Status reports a match as in
// progress until it is drawn on time or decided in the fourth innings.
package testmatch

import (
	"fmt"

	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/rules"
)

func closedTotal(s ir.MatchState, teamID string) int {
	total := 0
	for _, r := range s.ClosedFor(teamID) {
		total += r.Score
	}
	return total
}

// liveOpen reports whether the live innings has not been closed yet.
func liveOpen(s ir.MatchState) bool {
	if s.Innings == 0 {
		return false
	}
	_, closed := s.ClosedInningsNumber(s.Innings)
	return !closed
}

// Lead returns teamID's closed runs plus its live score (when batting)
// minus the opponent's closed runs. Negative values are a trail.
func Lead(s ir.MatchState, teamID string) int {
	lead := closedTotal(s, teamID)
	if s.BattingTeamID == teamID && liveOpen(s) {
		lead += s.Score
	}
	return lead - closedTotal(s, s.Config.Opponent(teamID))
}

// FollowOnStatus describes whether the side batting first may enforce the
// follow-on.
type FollowOnStatus struct {
	Evaluable bool   `json:"evaluable"` // innings 2 has closed
	Eligible  bool   `json:"eligible"`
	Trail     int    `json:"trail"`  // first-innings deficit of the side batting second
	Margin    int    `json:"margin"` // configured follow-on margin
	Leader    string `json:"leader,omitempty"`
	Trailer   string `json:"trailer,omitempty"`
}

// FollowOn evaluates follow-on eligibility once the second innings is
// closed. A trail of exactly the margin is eligible.
func FollowOn(s ir.MatchState) FollowOnStatus {
	st := FollowOnStatus{Margin: s.Config.FollowOnMargin()}
	first, ok1 := s.ClosedInningsNumber(1)
	second, ok2 := s.ClosedInningsNumber(2)
	if !ok1 || !ok2 {
		return st
	}
	st.Evaluable = true
	st.Leader = first.TeamID
	st.Trailer = second.TeamID
	st.Trail = first.Score - second.Score
	st.Eligible = st.Trail >= st.Margin
	return st
}

// inningsScore returns the closed score of an innings, or the live score
// when it is the innings in progress.
func inningsScore(s ir.MatchState, n int) (teamID string, score int, ok bool) {
	if r, found := s.ClosedInningsNumber(n); found {
		return r.TeamID, r.Score, true
	}
	if s.Innings == n {
		return s.BattingTeamID, s.Score, true
	}
	return "", 0, false
}

// FourthInningsTarget returns the runs the side batting fourth needs. It is
// computed per team over the first three innings, so an enforced follow-on
// (batting order A, B, B, A) yields the right chase. ok is false before
// the third innings has begun.
func FourthInningsTarget(s ir.MatchState) (target int, chaser string, ok bool) {
	thirdTeam, _, ok := inningsScore(s, 3)
	if !ok {
		return 0, "", false
	}
	chaser = s.Config.Opponent(thirdTeam)
	var defend, chase int
	for n := 1; n <= 3; n++ {
		team, score, found := inningsScore(s, n)
		if !found {
			continue
		}
		if team == thirdTeam {
			defend += score
		} else {
			chase += score
		}
	}
	return defend - chase + 1, chaser, true
}

// Result states.
const (
	StateInProgress = "in_progress"
	StateDrawn      = "drawn"
	StateWon        = "won"
)

// Verdict is the multi-day match result.
type Verdict struct {
	State      string `json:"state"`
	Winner     string `json:"winner,omitempty"`
	Margin     int    `json:"margin,omitempty"`
	MarginUnit string `json:"margin_unit,omitempty"` // "runs" or "wickets"
	Summary    string `json:"summary"`
}

// Status evaluates the test-match result. A decided fourth innings
// takes precedence over the day count.
func Status(s ir.MatchState) Verdict {
	if s.Innings == 4 && s.Target != nil {
		ceiling := rules.WicketCeiling(s.Config)
		switch {
		case s.Score >= *s.Target:
			left := ceiling - s.Wickets
			return Verdict{
				State: StateWon, Winner: s.BattingTeamID, Margin: left, MarginUnit: "wickets",
				Summary: fmt.Sprintf("%s won by %d %s", teamName(s, s.BattingTeamID), left, plural(left, "wicket")),
			}
		case s.Wickets >= ceiling:
			by := *s.Target - 1 - s.Score
			return Verdict{
				State: StateWon, Winner: s.BowlingTeamID, Margin: by, MarginUnit: "runs",
				Summary: fmt.Sprintf("%s won by %d %s", teamName(s, s.BowlingTeamID), by, plural(by, "run")),
			}
		}
	}
	if s.Config.Test != nil && s.Test != nil && s.Config.Test.MaxDays > 0 && s.Test.CurrentDay > s.Config.Test.MaxDays {
		return Verdict{State: StateDrawn, Summary: "Match drawn"}
	}
	return Verdict{State: StateInProgress, Summary: "In progress"}
}

func teamName(s ir.MatchState, id string) string {
	if t, ok := s.Config.Team(id); ok && t.Name != "" {
		return t.Name
	}
	return id
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
