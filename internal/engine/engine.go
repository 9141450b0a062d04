package engine

import (
	"log/slog"

	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/rules"
	"github.com/roach88/crease/internal/testmatch"
)

// Engine owns one match: the live state, the undo history and the clock
// that stamps events. It is not safe for concurrent use; Loop serializes
// callers that run on several goroutines.
//
// Every mutating command pushes a deep copy of the prior state before it
// replaces the state, so Undo is a pop.
type Engine struct {
	state   ir.MatchState
	history []ir.MatchState
	clock   *Clock
	wall    WallClock
}

// Option configures an Engine.
type Option func(*Engine)

// WithWallClock sets the wall clock used by the innings timer.
func WithWallClock(w WallClock) Option {
	return func(e *Engine) {
		e.wall = w
	}
}

// WithHistory seeds the undo stack, oldest first.
func WithHistory(history []ir.MatchState) Option {
	return func(e *Engine) {
		e.history = make([]ir.MatchState, len(history))
		for i, h := range history {
			e.history[i] = h.Clone()
		}
	}
}

// NewState returns the empty state of a match before the first innings.
func NewState(matchID string, cfg ir.MatchConfig) ir.MatchState {
	s := ir.MatchState{
		MatchID: matchID,
		Config:  cfg.Clone(),
	}
	if cfg.IsTest() {
		s.Test = &ir.TestStatus{CurrentDay: 1}
		s.Adjustments.Session = 1
	}
	return s
}

// New creates an engine for a fresh match.
func New(matchID string, cfg ir.MatchConfig, opts ...Option) *Engine {
	return Restore(NewState(matchID, cfg), opts...)
}

// Restore creates an engine around an existing state, for example one
// loaded from the store. The clock resumes after the state's last event.
func Restore(s ir.MatchState, opts ...Option) *Engine {
	e := &Engine{
		state: s.Clone(),
		clock: NewClockAt(s.LastTimestamp()),
		wall:  SystemClock,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns a deep copy of the live state.
func (e *Engine) Snapshot() ir.MatchState {
	return e.state.Clone()
}

// History returns copies of the undo stack, oldest first.
func (e *Engine) History() []ir.MatchState {
	out := make([]ir.MatchState, len(e.history))
	for i, h := range e.history {
		out[i] = h.Clone()
	}
	return out
}

// UndoDepth is the number of snapshots on the undo stack.
func (e *Engine) UndoDepth() int {
	return len(e.history)
}

// CanUndo reports whether a prior snapshot exists.
func (e *Engine) CanUndo() bool {
	return len(e.history) > 0
}

func (e *Engine) nowMillis() int64 {
	return e.wall().UnixMilli()
}

// commit pushes the current state and installs next.
func (e *Engine) commit(next ir.MatchState) {
	e.history = append(e.history, e.state)
	e.state = next
}

// mutate applies fn to a copy of the live state and commits the result.
func (e *Engine) mutate(fn func(s *ir.MatchState)) {
	next := e.state.Clone()
	fn(&next)
	e.commit(next)
}

// apply runs a partial event through the pipeline with a fresh timestamp.
func (e *Engine) apply(partial ir.BallEvent) ir.BallEvent {
	next := Apply(e.state, partial, Env{Timestamp: e.clock.Next(), WallMillis: e.nowMillis()})
	e.commit(next)
	ev := next.Events[len(next.Events)-1]
	slog.Debug("event applied",
		"match_id", next.MatchID,
		"innings", ev.Innings,
		"ts", ev.Timestamp,
		"kind", ev.Kind,
		"score", next.Score,
		"wickets", next.Wickets,
		"overs", ir.OversString(next.Balls),
	)
	return ev
}

// ApplyDelivery runs a partial delivery through the pipeline.
func (e *Engine) ApplyDelivery(partial ir.BallEvent) ir.BallEvent {
	partial.Kind = ir.EventDelivery
	return e.apply(partial)
}

// RecordWicket applies a wicket delivery. dismissedID defaults to the
// striker; fielderID is optional.
func (e *Engine) RecordWicket(kind ir.DismissalKind, dismissedID, fielderID string) ir.BallEvent {
	return e.ApplyDelivery(ir.BallEvent{
		IsWicket:    true,
		WicketKind:  kind,
		DismissedID: dismissedID,
		FielderID:   fielderID,
	})
}

// Undo restores the state before the most recent command. It reports
// false when there is nothing to undo.
func (e *Engine) Undo() bool {
	n := len(e.history)
	if n == 0 {
		return false
	}
	e.state = e.history[n-1]
	e.history = e.history[:n-1]
	clampCounters(&e.state)
	e.clock.Rewind(e.state.LastTimestamp())
	slog.Debug("undo", "match_id", e.state.MatchID, "depth", len(e.history))
	return true
}

func clampCounters(s *ir.MatchState) {
	if s.Score < 0 {
		s.Score = 0
	}
	if s.Wickets < 0 {
		s.Wickets = 0
	}
	if s.Balls < 0 {
		s.Balls = 0
	}
}

// EditBall corrects one event of the live innings and replays it. An
// unknown timestamp changes nothing and returns false.
func (e *Engine) EditBall(ts int64, patch ir.BallPatch) bool {
	next, ok := Edit(e.state, ts, patch)
	if !ok {
		slog.Debug("edit ignored: unknown timestamp", "match_id", e.state.MatchID, "ts", ts)
		return false
	}
	e.commit(next)
	return true
}

// CorrectIdentity rewrites a player id without replaying scoring.
func (e *Engine) CorrectIdentity(oldID, newID string, role ir.Role) {
	e.commit(CorrectIdentity(e.state, oldID, newID, role))
}

// RetireBatter logs a retirement marker. A retired-out batter counts as a
// team wicket.
func (e *Engine) RetireBatter(playerID string, kind ir.RetirementKind) ir.BallEvent {
	return e.apply(ir.BallEvent{Kind: ir.EventRetirement, DismissedID: playerID, Retirement: kind})
}

// ReplaceBowlerMidOver hands the rest of the over to bowlerID.
func (e *Engine) ReplaceBowlerMidOver(bowlerID string) ir.BallEvent {
	return e.apply(ir.BallEvent{Kind: ir.EventBowlerChange, BowlerID: bowlerID})
}

// SelectPlayers logs an identity marker; empty ids leave a slot unchanged.
func (e *Engine) SelectPlayers(strikerID, nonStrikerID, bowlerID string) ir.BallEvent {
	return e.apply(ir.BallEvent{
		Kind:         ir.EventIdentity,
		StrikerID:    strikerID,
		NonStrikerID: nonStrikerID,
		BowlerID:     bowlerID,
	})
}

// Substitute puts inID into whichever live slot outID holds and records
// the substitution.
func (e *Engine) Substitute(outID, inID string) ir.BallEvent {
	ev := e.apply(ir.BallEvent{Kind: ir.EventSubstitution, OutgoingID: outID, IncomingID: inID})
	e.state.Adjustments.Substitutions = append(e.state.Adjustments.Substitutions, ir.Substitution{
		Innings:   ev.Innings,
		Timestamp: ev.Timestamp,
		OutID:     outID,
		InID:      inID,
	})
	return ev
}

// AwardPenalty adds penalty runs to the batting side without a ball.
func (e *Engine) AwardPenalty(runs int) ir.BallEvent {
	return e.apply(ir.BallEvent{Kind: ir.EventPenalty, ExtraRuns: runs})
}

// DeclareInnings flags the live innings as declared.
func (e *Engine) DeclareInnings() {
	e.mutate(func(s *ir.MatchState) { s.Adjustments.Declared = true })
}

// ConcludeInnings flags the live innings as concluded.
func (e *Engine) ConcludeInnings() {
	e.mutate(func(s *ir.MatchState) { s.Adjustments.Concluded = true })
}

// StartInnings resets the live counters and begins the next innings.
func (e *Engine) StartInnings(battingTeamID, bowlingTeamID string, target *int, followOn bool) {
	e.mutate(func(s *ir.MatchState) {
		s.Innings++
		s.BattingTeamID = battingTeamID
		s.BowlingTeamID = bowlingTeamID
		s.Score, s.Wickets, s.Balls = 0, 0, 0
		s.StrikerID, s.NonStrikerID, s.BowlerID = "", "", ""
		s.Target = nil
		if target != nil {
			t := *target
			s.Target = &t
		}
		s.FollowOn = followOn
		s.Adjustments.Declared = false
		s.Adjustments.Concluded = false
		s.Timer = ir.Timer{}
	})
	slog.Info("innings started",
		"match_id", e.state.MatchID,
		"innings", e.state.Innings,
		"batting", battingTeamID,
		"follow_on", followOn,
	)
}

// EndInnings records the live innings as closed. The end reason comes from
// the rule engine. complete also marks the match finished. Ending the same
// innings twice replaces its record.
func (e *Engine) EndInnings(complete bool) {
	e.mutate(func(s *ir.MatchState) {
		rec := ir.InningsRecord{
			Innings:   s.Innings,
			TeamID:    s.BattingTeamID,
			Score:     s.Score,
			Wickets:   s.Wickets,
			Balls:     s.Balls,
			Overs:     ir.OversString(s.Balls),
			EndReason: rules.InningsEnd(*s),
			FollowOn:  s.FollowOn,
		}
		replaced := false
		for i, r := range s.ClosedInnings {
			if r.Innings == rec.Innings {
				s.ClosedInnings[i] = rec
				replaced = true
			}
		}
		if !replaced {
			s.ClosedInnings = append(s.ClosedInnings, rec)
		}
		if s.Test != nil {
			s.Test.Lead = testmatch.Lead(*s, s.BattingTeamID)
		}
		if complete {
			s.Completed = true
		}
	})
	slog.Info("innings closed",
		"match_id", e.state.MatchID,
		"innings", e.state.Innings,
		"score", e.state.Score,
		"wickets", e.state.Wickets,
		"complete", complete,
	)
}

// ConcludeMatch marks the match finished with a result text.
func (e *Engine) ConcludeMatch(result string) {
	e.mutate(func(s *ir.MatchState) {
		s.Completed = true
		s.Result = result
	})
}

// LoseOvers forfeits overs to weather or administrative stoppage.
func (e *Engine) LoseOvers(overs int) {
	e.mutate(func(s *ir.MatchState) {
		s.Adjustments.OversLost += overs
		if s.Adjustments.OversLost < 0 {
			s.Adjustments.OversLost = 0
		}
	})
}

// AdvanceDay moves a multi-day match to the next day's first session.
func (e *Engine) AdvanceDay() {
	e.mutate(func(s *ir.MatchState) {
		if s.Test == nil {
			s.Test = &ir.TestStatus{CurrentDay: 1}
		}
		s.Test.CurrentDay++
		s.Adjustments.Session = 1
	})
}

// PauseTimer stops the innings clock.
func (e *Engine) PauseTimer() {
	now := e.nowMillis()
	e.mutate(func(s *ir.MatchState) { s.Timer = pauseTimer(s.Timer, now) })
}

// ResumeTimer restarts the innings clock, crediting the pause as allowance.
func (e *Engine) ResumeTimer() {
	now := e.nowMillis()
	e.mutate(func(s *ir.MatchState) { s.Timer = resumeTimer(s.Timer, now) })
}

// AddAllowance credits seconds of stoppage to the innings clock.
func (e *Engine) AddAllowance(seconds int) {
	e.mutate(func(s *ir.MatchState) { s.Timer.AllowanceSeconds += seconds })
}

// UpdateMetadata patches administrative fields. Striker, non-striker and
// bowler patches are logged as one identity marker so replay reproduces
// them; the rest are applied directly. Either way it is one undo step.
func (e *Engine) UpdateMetadata(p ir.MetadataPatch) {
	var next ir.MatchState
	if marker, ok := identityMarker(p); ok {
		next = Apply(e.state, marker, Env{Timestamp: e.clock.Next()})
	} else {
		next = e.state.Clone()
	}
	if p.Umpires != nil {
		next.Adjustments.Umpires = append([]string(nil), p.Umpires...)
	}
	if p.Session != nil {
		next.Adjustments.Session = *p.Session
	}
	if p.Day != nil {
		if next.Test == nil {
			next.Test = &ir.TestStatus{}
		}
		next.Test.CurrentDay = *p.Day
	}
	if p.Result != nil {
		next.Result = *p.Result
	}
	e.commit(next)
}

// identityMarker turns the identity fields of p into an identity event.
// An empty id still counts and vacates the slot.
func identityMarker(p ir.MetadataPatch) (ir.BallEvent, bool) {
	m := ir.BallEvent{Kind: ir.EventIdentity}
	if p.StrikerID != nil {
		m.StrikerID = *p.StrikerID
		m.Assign(ir.RoleStriker)
	}
	if p.NonStrikerID != nil {
		m.NonStrikerID = *p.NonStrikerID
		m.Assign(ir.RoleNonStriker)
	}
	if p.BowlerID != nil {
		m.BowlerID = *p.BowlerID
		m.Assign(ir.RoleBowler)
	}
	return m, len(m.Assigned) > 0
}

// OverRate reports the over-rate position of the live innings now.
func (e *Engine) OverRate() OverRateReport {
	return OverRate(e.state, e.nowMillis())
}
