package scorecard

import (
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/rules"
)

// RunRates is the live scoring-rate panel.
type RunRates struct {
	RunRate        float64 `json:"run_rate"`
	RequiredRate   float64 `json:"required_rate,omitempty"`
	RunsRequired   int     `json:"runs_required,omitempty"`
	BallsRemaining int     `json:"balls_remaining"` // -1 when overs are unlimited
	Chasing        bool    `json:"chasing"`
}

// Rates computes rates for the live innings. The required rate is
// only meaningful when a target is set and the innings has a ball limit.
func Rates(s ir.MatchState) RunRates {
	r := RunRates{
		RunRate:        economy(s.Score, s.Balls),
		BallsRemaining: rules.BallsRemaining(s),
	}
	if s.Target == nil {
		return r
	}
	r.Chasing = true
	r.RunsRequired = max(*s.Target-s.Score, 0)
	if r.BallsRemaining > 0 {
		r.RequiredRate = round2(float64(r.RunsRequired) * ir.BallsPerOver / float64(r.BallsRemaining))
	}
	return r
}
