package engine

import (
	"github.com/roach88/crease/internal/ir"
)

// Edit merges patch into the live-innings event stamped ts and replays the
// whole innings through the pipeline.
//
// Replay resets score, wickets and balls, seeds striker, non-striker and
// bowler from the innings' first event, then re-applies every event in
// chronological order. Timestamps are preserved, derived fields and
// non-custom commentary are recomputed. A delivery keeps the identities it
// was given explicitly (see BallEvent.Assigned); the rest are re-stamped
// from the replayed slots. Events of other innings are carried
// unchanged. The timer is not touched.
//
// An unknown timestamp is a no-op: s is returned with ok false.
func Edit(s ir.MatchState, ts int64, patch ir.BallPatch) (ir.MatchState, bool) {
	idx := -1
	for i, e := range s.Events {
		if e.Innings == s.Innings && e.Timestamp == ts {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, false
	}

	events := make([]ir.BallEvent, len(s.Events))
	copy(events, s.Events)
	events[idx] = patch.Merge(events[idx].Clone())

	return replayInnings(s, events), true
}

// Replay re-derives the live innings from its own log. It is the identity
// on any state the pipeline produced, which makes it a consistency check.
func Replay(s ir.MatchState) ir.MatchState {
	return replayInnings(s, s.Events)
}

func replayInnings(s ir.MatchState, events []ir.BallEvent) ir.MatchState {
	base := s.Clone()
	base.Score, base.Wickets, base.Balls = 0, 0, 0
	base.StrikerID, base.NonStrikerID, base.BowlerID = "", "", ""
	base.Events = make([]ir.BallEvent, 0, len(events))

	var innings []ir.BallEvent
	for _, e := range events {
		if e.Innings == s.Innings {
			innings = append(innings, e)
		} else {
			base.Events = append(base.Events, e.Clone())
		}
	}
	if len(innings) > 0 {
		first := innings[0]
		base.StrikerID = first.StrikerID
		base.NonStrikerID = first.NonStrikerID
		base.BowlerID = first.BowlerID
	}

	for _, e := range innings {
		base = Apply(base, replayable(e), Env{Timestamp: e.Timestamp})
	}
	return base
}

// replayable strips the fields the pipeline derives so they are recomputed.
func replayable(e ir.BallEvent) ir.BallEvent {
	e.Over, e.Ball, e.TeamScore, e.CreditBowler = 0, 0, 0, false
	if !e.CustomCommentary {
		e.Commentary = ""
	}
	if e.Kind == ir.EventDelivery || e.Kind == "" {
		if !e.Assigns(ir.RoleStriker) {
			e.StrikerID = ""
		}
		if !e.Assigns(ir.RoleNonStriker) {
			e.NonStrikerID = ""
		}
		if !e.Assigns(ir.RoleBowler) {
			e.BowlerID = ""
		}
	}
	return e
}

// CorrectIdentity replaces oldID with newID without replaying any scoring.
// Live slots are rewritten only for role (every slot when role is empty);
// history is rewritten in every identity field of every event.
func CorrectIdentity(s ir.MatchState, oldID, newID string, role ir.Role) ir.MatchState {
	next := s.Clone()
	if oldID == "" || oldID == newID {
		return next
	}

	swap := func(v *string) {
		if *v == oldID {
			*v = newID
		}
	}
	switch role {
	case ir.RoleStriker:
		swap(&next.StrikerID)
	case ir.RoleNonStriker:
		swap(&next.NonStrikerID)
	case ir.RoleBowler:
		swap(&next.BowlerID)
	default:
		swap(&next.StrikerID)
		swap(&next.NonStrikerID)
		swap(&next.BowlerID)
	}

	for i := range next.Events {
		e := &next.Events[i]
		swap(&e.StrikerID)
		swap(&e.NonStrikerID)
		swap(&e.BowlerID)
		swap(&e.DismissedID)
		swap(&e.FielderID)
		swap(&e.AssistFielderID)
		swap(&e.OutgoingID)
		swap(&e.IncomingID)
		if !e.CustomCommentary && e.Kind.IsMarker() {
			e.Commentary = Commentary(*e)
		}
	}
	for i := range next.Adjustments.Substitutions {
		sub := &next.Adjustments.Substitutions[i]
		swap(&sub.OutID)
		swap(&sub.InID)
	}
	return next
}
