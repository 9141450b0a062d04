package rules

import (
	"github.com/roach88/crease/internal/ir"
)

// Baseline overs per side (per day for tests).
var baselineOvers = map[ir.Format]int{
	ir.FormatT20:    20,
	ir.FormatODI:    50,
	ir.FormatForty:  40,
	ir.FormatT10:    10,
	ir.FormatTest:   90,
	ir.FormatCustom: 20,
}

// OversAllowed returns the overs available to the batting side: the
// format baseline (or the configured override) minus overs lost, floored
// at 1. For tests the value is the daily allocation.
func OversAllowed(cfg ir.MatchConfig, adj ir.Adjustments) int {
	n := baselineOvers[cfg.Format]
	switch {
	case cfg.IsTest():
		if cfg.Test != nil && cfg.Test.OversPerDay > 0 {
			n = cfg.Test.OversPerDay
		}
	case cfg.Overs > 0:
		n = cfg.Overs
	}
	if n == 0 {
		n = baselineOvers[ir.FormatT20]
	}
	n -= adj.OversLost
	if n < 1 {
		n = 1
	}
	return n
}

// WicketCeiling is the number of wickets that ends an innings: squad-1
// under flexible squads, otherwise min(10, squad-1).
func WicketCeiling(cfg ir.MatchConfig) int {
	n := cfg.Squad() - 1
	if !cfg.FlexibleSquad && n > 10 {
		n = 10
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Innings-end reasons, in evaluation priority.
const (
	EndDeclared       = "Declared"
	EndMatchConcluded = "Match Concluded"
	EndAllOut         = "All Out"
	EndOversCompleted = "Overs Completed"
	EndTargetChased   = "Target Chased"
	EndNone           = ""
)

// InningsEnd reports why the live innings must close, or EndNone.
func InningsEnd(s ir.MatchState) string {
	switch {
	case s.Adjustments.Declared:
		return EndDeclared
	case s.Adjustments.Concluded:
		return EndMatchConcluded
	case s.Wickets >= WicketCeiling(s.Config):
		return EndAllOut
	case !s.Config.IsTest() && s.Balls >= OversAllowed(s.Config, s.Adjustments)*ir.BallsPerOver:
		return EndOversCompleted
	case s.Target != nil && s.Score >= *s.Target:
		return EndTargetChased
	default:
		return EndNone
	}
}

// BallsRemaining returns legal balls left in a limited-overs innings, or
// -1 for tests.
func BallsRemaining(s ir.MatchState) int {
	if s.Config.IsTest() {
		return -1
	}
	left := OversAllowed(s.Config, s.Adjustments)*ir.BallsPerOver - s.Balls
	if left < 0 {
		return 0
	}
	return left
}
