package engine

import (
	"github.com/roach88/crease/internal/ir"
)

// bowlerStep stamps the current bowler on a delivery; a supplied bowler
// replaces the live one first.
func bowlerStep(s *ir.MatchState, e *ir.BallEvent) {
	if e.BowlerID != "" {
		s.BowlerID = e.BowlerID
		e.Assign(ir.RoleBowler)
	}
	e.BowlerID = s.BowlerID
}
