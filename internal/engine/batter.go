package engine

import (
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/rules"
)

// stampBatters records who was at the crease before the delivery. A
// supplied id takes the slot first.
func stampBatters(s *ir.MatchState, e *ir.BallEvent) {
	if e.StrikerID != "" {
		s.StrikerID = e.StrikerID
		e.Assign(ir.RoleStriker)
	}
	if e.NonStrikerID != "" {
		s.NonStrikerID = e.NonStrikerID
		e.Assign(ir.RoleNonStriker)
	}
	e.StrikerID = s.StrikerID
	e.NonStrikerID = s.NonStrikerID
}

// batterStep removes a dismissed batter from whichever slot holds them.
// The dismissed id defaults to the striker who faced the ball. Picking the
// replacement is a separate select_players command.
func batterStep(s *ir.MatchState, e *ir.BallEvent) {
	if !e.IsWicket {
		return
	}
	if e.DismissedID == "" {
		e.DismissedID = e.StrikerID
	}
	clearSlot(s, e.DismissedID)
	if ir.LookupDismissal(e.WicketKind).CountsAsWicket {
		addWicket(s)
	}
}

// addWicket increments team wickets up to the format ceiling.
func addWicket(s *ir.MatchState) {
	if s.Wickets < rules.WicketCeiling(s.Config) {
		s.Wickets++
	}
}

func clearSlot(s *ir.MatchState, id string) {
	if id == "" {
		return
	}
	switch id {
	case s.StrikerID:
		s.StrikerID = ""
	case s.NonStrikerID:
		s.NonStrikerID = ""
	}
}

// replaceSlot puts in wherever out currently stands, batting or bowling.
func replaceSlot(s *ir.MatchState, out, in string) {
	if out == "" {
		return
	}
	switch out {
	case s.StrikerID:
		s.StrikerID = in
	case s.NonStrikerID:
		s.NonStrikerID = in
	}
	if s.BowlerID == out {
		s.BowlerID = in
	}
}
