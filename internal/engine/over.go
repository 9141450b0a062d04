package engine

import (
	"github.com/roach88/crease/internal/ir"
)

// normalizeExtras moves runs recorded on a wide, bye or leg-bye into extra
// runs, since none of those can credit the bat.
func normalizeExtras(e *ir.BallEvent) {
	e.ExtraKind = e.ExtraKind.Normalize()
	if e.Runs < 0 {
		e.Runs = 0
	}
	if e.ExtraRuns < 0 {
		e.ExtraRuns = 0
	}
	switch e.ExtraKind {
	case ir.ExtraWide, ir.ExtraBye, ir.ExtraLegBye:
		e.ExtraRuns += e.Runs
		e.Runs = 0
	}
}

// overStep applies the score, ball-count and strike effects of a delivery.
// Strike rotates on an odd physical run count (the wide/no-ball penalty is
// not physical), then again at the end of an over unless a wicket fell.
func overStep(s *ir.MatchState, e *ir.BallEvent) {
	legal := e.ExtraKind.IsLegal()
	if legal {
		s.Balls++
	}
	s.Score += e.TotalRuns()

	if (e.Runs+e.ExtraRuns)%2 == 1 {
		swapStrike(s)
	}
	if legal && s.Balls%ir.BallsPerOver == 0 && !e.IsWicket {
		swapStrike(s)
	}
}

func swapStrike(s *ir.MatchState) {
	s.StrikerID, s.NonStrikerID = s.NonStrikerID, s.StrikerID
}
