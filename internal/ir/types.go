package ir

import "slices"

// EventKind tags what a log entry represents. Only deliveries and penalty
// awards move the score; every other kind is a marker carrying identity
// assignments.
type EventKind string

const (
	EventDelivery     EventKind = "delivery"
	EventIdentity     EventKind = "identity"      // new batter / new bowler selected
	EventRetirement   EventKind = "retirement"    // batter retired hurt or out
	EventBowlerChange EventKind = "bowler_change" // bowler replaced mid-over
	EventSubstitution EventKind = "substitution"  // substitute takes a live slot
	EventPenalty      EventKind = "penalty"       // penalty runs awarded, no ball
)

// IsMarker reports whether the kind is a non-scoring marker.
func (k EventKind) IsMarker() bool {
	switch k {
	case EventIdentity, EventRetirement, EventBowlerChange, EventSubstitution:
		return true
	default:
		return false
	}
}

// ExtraKind classifies extras on a delivery.
type ExtraKind string

const (
	ExtraNone   ExtraKind = "none"
	ExtraWide   ExtraKind = "wide"
	ExtraNoBall ExtraKind = "no_ball"
	ExtraBye    ExtraKind = "bye"
	ExtraLegBye ExtraKind = "leg_bye"
)

// Normalize maps the empty kind to ExtraNone.
func (k ExtraKind) Normalize() ExtraKind {
	if k == "" {
		return ExtraNone
	}
	return k
}

// IsLegal reports whether a delivery with this extra counts toward the over.
func (k ExtraKind) IsLegal() bool {
	k = k.Normalize()
	return k != ExtraWide && k != ExtraNoBall
}

// Penalty returns the fixed penalty run for wides and no-balls.
func (k ExtraKind) Penalty() int {
	if k.IsLegal() {
		return 0
	}
	return 1
}

// Label is the display label used in synthesized commentary.
func (k ExtraKind) Label() string {
	switch k.Normalize() {
	case ExtraWide:
		return "Wide"
	case ExtraNoBall:
		return "No Ball"
	case ExtraBye:
		return "Bye"
	case ExtraLegBye:
		return "Leg Bye"
	default:
		return ""
	}
}

// RetirementKind distinguishes a retired-hurt batter from a retired-out one.
type RetirementKind string

const (
	RetiredHurt RetirementKind = "hurt"
	RetiredOut  RetirementKind = "out"
)

// Coord is an integer grid position (0-100 on each axis) used for pitch maps
// and wagon wheels. The engine never reads it.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BallEvent is the immutable fact of one delivery or marker.
type BallEvent struct {
	Timestamp int64     `json:"timestamp"` // logical clock, unique and increasing
	Kind      EventKind `json:"kind"`
	Innings   int       `json:"innings"`
	Over      int       `json:"over"` // 0-based over index
	Ball      int       `json:"ball"` // legal balls in the over, 1..6 for legal deliveries

	StrikerID    string `json:"striker_id,omitempty"`
	NonStrikerID string `json:"non_striker_id,omitempty"`
	BowlerID     string `json:"bowler_id,omitempty"`
	// roles whose id was supplied with the event rather than stamped from
	// the live slots
	Assigned []Role `json:"assigned,omitempty"`

	Runs      int       `json:"runs"`
	ExtraRuns int       `json:"extra_runs"`
	ExtraKind ExtraKind `json:"extra_kind"`

	IsWicket        bool          `json:"is_wicket"`
	WicketKind      DismissalKind `json:"wicket_kind,omitempty"`
	DismissedID     string        `json:"dismissed_id,omitempty"`
	FielderID       string        `json:"fielder_id,omitempty"`
	AssistFielderID string        `json:"assist_fielder_id,omitempty"`
	CreditBowler    bool          `json:"credit_bowler"`

	TeamScore        int            `json:"team_score"`
	Commentary       string         `json:"commentary,omitempty"`
	CustomCommentary bool           `json:"custom_commentary,omitempty"`
	Retirement       RetirementKind `json:"retirement,omitempty"`

	// substitution markers only
	OutgoingID string `json:"outgoing_id,omitempty"`
	IncomingID string `json:"incoming_id,omitempty"`

	Pitch *Coord `json:"pitch,omitempty"`
	Shot  *Coord `json:"shot,omitempty"`
}

// IsLegal reports whether the event is a delivery that counts toward the over.
func (e BallEvent) IsLegal() bool {
	return e.Kind == EventDelivery && e.ExtraKind.IsLegal()
}

// TotalRuns is every run the event added to the team score.
func (e BallEvent) TotalRuns() int {
	switch e.Kind {
	case EventDelivery:
		return e.Runs + e.ExtraRuns + e.ExtraKind.Penalty()
	case EventPenalty:
		return e.ExtraRuns
	default:
		return 0
	}
}

// CountsAsWicket reports whether the event added one to team wickets.
func (e BallEvent) CountsAsWicket() bool {
	switch e.Kind {
	case EventDelivery:
		return e.IsWicket && LookupDismissal(e.WicketKind).CountsAsWicket
	case EventRetirement:
		return e.Retirement == RetiredOut
	default:
		return false
	}
}

// InningsRecord is the closed score of a completed innings.
type InningsRecord struct {
	Innings   int    `json:"innings"`
	TeamID    string `json:"team_id"`
	Score     int    `json:"score"`
	Wickets   int    `json:"wickets"`
	Balls     int    `json:"balls"`
	Overs     string `json:"overs"`
	EndReason string `json:"end_reason,omitempty"`
	FollowOn  bool   `json:"follow_on,omitempty"`
}

// Timer is the informational innings clock. Times are unix milliseconds.
type Timer struct {
	StartedAt        int64 `json:"started_at"`
	Paused           bool  `json:"paused"`
	PausedAt         int64 `json:"paused_at,omitempty"`
	AllowanceSeconds int   `json:"allowance_seconds"`
}

// Substitution records a replacement player taking a live slot.
type Substitution struct {
	Innings   int    `json:"innings"`
	Timestamp int64  `json:"timestamp"`
	OutID     string `json:"out_id"`
	InID      string `json:"in_id"`
}

// Adjustments is the bag of administrative state consumed by the rule engine.
type Adjustments struct {
	OversLost     int            `json:"overs_lost"`
	Declared      bool           `json:"declared"`
	Concluded     bool           `json:"concluded"`
	Session       int            `json:"session,omitempty"`
	Umpires       []string       `json:"umpires,omitempty"`
	Substitutions []Substitution `json:"substitutions,omitempty"`
}

// TestStatus carries multi-day bookkeeping for test matches.
type TestStatus struct {
	CurrentDay int `json:"current_day"`
	Lead       int `json:"lead"`
}

// MatchState is the single aggregate owned by the engine. It is replaced,
// never mutated in place, by every command.
type MatchState struct {
	MatchID string      `json:"match_id"`
	Config  MatchConfig `json:"config"`

	BattingTeamID string `json:"batting_team_id"`
	BowlingTeamID string `json:"bowling_team_id"`

	Score   int `json:"score"`
	Wickets int `json:"wickets"`
	Balls   int `json:"balls"`

	StrikerID    string `json:"striker_id,omitempty"`
	NonStrikerID string `json:"non_striker_id,omitempty"`
	BowlerID     string `json:"bowler_id,omitempty"`

	Innings  int  `json:"innings"`
	Target   *int `json:"target,omitempty"`
	FollowOn bool `json:"follow_on,omitempty"`

	Events        []BallEvent     `json:"events"`
	ClosedInnings []InningsRecord `json:"closed_innings"`

	Completed bool   `json:"completed"`
	Result    string `json:"result,omitempty"`

	Test        *TestStatus `json:"test,omitempty"`
	Timer       Timer       `json:"timer"`
	Adjustments Adjustments `json:"adjustments"`
}

// InningsEvents returns the events of one innings in chronological order.
func (s MatchState) InningsEvents(innings int) []BallEvent {
	var out []BallEvent
	for _, e := range s.Events {
		if e.Innings == innings {
			out = append(out, e)
		}
	}
	return out
}

// LastTimestamp returns the highest timestamp in the log, or 0 when empty.
func (s MatchState) LastTimestamp() int64 {
	var max int64
	for _, e := range s.Events {
		if e.Timestamp > max {
			max = e.Timestamp
		}
	}
	return max
}

// ClosedFor returns the closed innings records of one team.
func (s MatchState) ClosedFor(teamID string) []InningsRecord {
	var out []InningsRecord
	for _, r := range s.ClosedInnings {
		if r.TeamID == teamID {
			out = append(out, r)
		}
	}
	return out
}

// ClosedInningsNumber returns the record for an innings number.
func (s MatchState) ClosedInningsNumber(innings int) (InningsRecord, bool) {
	for _, r := range s.ClosedInnings {
		if r.Innings == innings {
			return r, true
		}
	}
	return InningsRecord{}, false
}

// Clone returns a deep copy so snapshots never share backing arrays.
func (s MatchState) Clone() MatchState {
	out := s
	out.Config = s.Config.Clone()
	if s.Target != nil {
		t := *s.Target
		out.Target = &t
	}
	if s.Events != nil {
		out.Events = make([]BallEvent, len(s.Events))
		for i, e := range s.Events {
			out.Events[i] = e.Clone()
		}
	}
	if s.ClosedInnings != nil {
		out.ClosedInnings = append([]InningsRecord(nil), s.ClosedInnings...)
	}
	if s.Test != nil {
		t := *s.Test
		out.Test = &t
	}
	if s.Adjustments.Umpires != nil {
		out.Adjustments.Umpires = append([]string(nil), s.Adjustments.Umpires...)
	}
	if s.Adjustments.Substitutions != nil {
		out.Adjustments.Substitutions = append([]Substitution(nil), s.Adjustments.Substitutions...)
	}
	return out
}

// Clone returns a copy that shares no coordinate pointers with e.
func (e BallEvent) Clone() BallEvent {
	out := e
	if e.Pitch != nil {
		p := *e.Pitch
		out.Pitch = &p
	}
	if e.Shot != nil {
		p := *e.Shot
		out.Shot = &p
	}
	if e.Assigned != nil {
		out.Assigned = append([]Role(nil), e.Assigned...)
	}
	return out
}

// Assigns reports whether the event itself set role's slot.
func (e BallEvent) Assigns(role Role) bool {
	return slices.Contains(e.Assigned, role)
}

// Assign records that the event set role's slot.
func (e *BallEvent) Assign(role Role) {
	if !e.Assigns(role) {
		e.Assigned = append(e.Assigned, role)
	}
}
