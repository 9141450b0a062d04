package ir

// CommandType names one operation of the match command API.
type CommandType string

const (
	CmdDelivery        CommandType = "delivery"
	CmdWicket          CommandType = "wicket"
	CmdUndo            CommandType = "undo"
	CmdEdit            CommandType = "edit"
	CmdCorrectIdentity CommandType = "correct_identity"
	CmdRetire          CommandType = "retire"
	CmdReplaceBowler   CommandType = "replace_bowler"
	CmdSelectPlayers   CommandType = "select_players"
	CmdSubstitute      CommandType = "substitute"
	CmdPenalty         CommandType = "penalty"
	CmdDeclare         CommandType = "declare"
	CmdConclude        CommandType = "conclude"
	CmdStartInnings    CommandType = "start_innings"
	CmdEndInnings      CommandType = "end_innings"
	CmdConcludeMatch   CommandType = "conclude_match"
	CmdLoseOvers       CommandType = "lose_overs"
	CmdNextDay         CommandType = "next_day"
	CmdPauseTimer      CommandType = "pause_timer"
	CmdResumeTimer     CommandType = "resume_timer"
	CmdAddAllowance    CommandType = "add_allowance"
	CmdUpdateMetadata  CommandType = "update_metadata"
)

// CommandTypes lists every type in documentation order.
var CommandTypes = []CommandType{
	CmdDelivery, CmdWicket, CmdUndo, CmdEdit, CmdCorrectIdentity, CmdRetire,
	CmdReplaceBowler, CmdSelectPlayers, CmdSubstitute, CmdPenalty, CmdDeclare,
	CmdConclude, CmdStartInnings, CmdEndInnings, CmdConcludeMatch, CmdLoseOvers,
	CmdNextDay, CmdPauseTimer, CmdResumeTimer, CmdAddAllowance, CmdUpdateMetadata,
}

// Role selects which live slot an identity correction targets.
type Role string

const (
	RoleStriker    Role = "striker"
	RoleNonStriker Role = "non_striker"
	RoleBowler     Role = "bowler"
)

// Command is the transport form of one engine call. Only the fields
// relevant to Type are read.
type Command struct {
	Type CommandType `json:"type" yaml:"type"`

	// delivery / wicket
	Runs            int           `json:"runs,omitempty" yaml:"runs,omitempty"`
	ExtraRuns       int           `json:"extra_runs,omitempty" yaml:"extra_runs,omitempty"`
	ExtraKind       ExtraKind     `json:"extra_kind,omitempty" yaml:"extra_kind,omitempty"`
	IsWicket        bool          `json:"is_wicket,omitempty" yaml:"is_wicket,omitempty"`
	WicketKind      DismissalKind `json:"wicket_kind,omitempty" yaml:"wicket_kind,omitempty"`
	DismissedID     string        `json:"dismissed_id,omitempty" yaml:"dismissed_id,omitempty"`
	FielderID       string        `json:"fielder_id,omitempty" yaml:"fielder_id,omitempty"`
	AssistFielderID string        `json:"assist_fielder_id,omitempty" yaml:"assist_fielder_id,omitempty"`
	Commentary      string        `json:"commentary,omitempty" yaml:"commentary,omitempty"`
	Pitch           *Coord        `json:"pitch,omitempty" yaml:"pitch,omitempty"`
	Shot            *Coord        `json:"shot,omitempty" yaml:"shot,omitempty"`

	// edit
	Timestamp int64      `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Patch     *BallPatch `json:"patch,omitempty" yaml:"patch,omitempty"`

	// correct_identity
	OldID string `json:"old_id,omitempty" yaml:"old_id,omitempty"`
	NewID string `json:"new_id,omitempty" yaml:"new_id,omitempty"`
	Role  Role   `json:"role,omitempty" yaml:"role,omitempty"`

	// retire / substitute / select_players / replace_bowler
	PlayerID     string         `json:"player_id,omitempty" yaml:"player_id,omitempty"`
	Retirement   RetirementKind `json:"retirement,omitempty" yaml:"retirement,omitempty"`
	OutID        string         `json:"out_id,omitempty" yaml:"out_id,omitempty"`
	InID         string         `json:"in_id,omitempty" yaml:"in_id,omitempty"`
	StrikerID    string         `json:"striker_id,omitempty" yaml:"striker_id,omitempty"`
	NonStrikerID string         `json:"non_striker_id,omitempty" yaml:"non_striker_id,omitempty"`
	BowlerID     string         `json:"bowler_id,omitempty" yaml:"bowler_id,omitempty"`

	// start_innings / end_innings / conclude_match
	BattingTeamID string `json:"batting_team_id,omitempty" yaml:"batting_team_id,omitempty"`
	BowlingTeamID string `json:"bowling_team_id,omitempty" yaml:"bowling_team_id,omitempty"`
	Target        *int   `json:"target,omitempty" yaml:"target,omitempty"`
	FollowOn      bool   `json:"follow_on,omitempty" yaml:"follow_on,omitempty"`
	Complete      bool   `json:"complete,omitempty" yaml:"complete,omitempty"`
	Result        string `json:"result,omitempty" yaml:"result,omitempty"`

	// lose_overs / add_allowance
	Overs   int `json:"overs,omitempty" yaml:"overs,omitempty"`
	Seconds int `json:"seconds,omitempty" yaml:"seconds,omitempty"`

	Metadata *MetadataPatch `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Delivery builds the partial event carried by a delivery or wicket command.
func (c Command) Delivery() BallEvent {
	e := BallEvent{
		Kind:            EventDelivery,
		StrikerID:       c.StrikerID,
		NonStrikerID:    c.NonStrikerID,
		BowlerID:        c.BowlerID,
		Runs:            c.Runs,
		ExtraRuns:       c.ExtraRuns,
		ExtraKind:       c.ExtraKind.Normalize(),
		IsWicket:        c.IsWicket || c.Type == CmdWicket,
		WicketKind:      c.WicketKind,
		DismissedID:     c.DismissedID,
		FielderID:       c.FielderID,
		AssistFielderID: c.AssistFielderID,
		Pitch:           c.Pitch,
		Shot:            c.Shot,
	}
	if c.Commentary != "" {
		e.Commentary = c.Commentary
		e.CustomCommentary = true
	}
	return e
}

// BallPatch is a field-level correction merged into a historical event.
// Identity fields are deliberately absent: identities change through
// markers or CorrectIdentity, never through an edit.
type BallPatch struct {
	Runs            *int           `json:"runs,omitempty" yaml:"runs,omitempty"`
	ExtraRuns       *int           `json:"extra_runs,omitempty" yaml:"extra_runs,omitempty"`
	ExtraKind       *ExtraKind     `json:"extra_kind,omitempty" yaml:"extra_kind,omitempty"`
	IsWicket        *bool          `json:"is_wicket,omitempty" yaml:"is_wicket,omitempty"`
	WicketKind      *DismissalKind `json:"wicket_kind,omitempty" yaml:"wicket_kind,omitempty"`
	DismissedID     *string        `json:"dismissed_id,omitempty" yaml:"dismissed_id,omitempty"`
	FielderID       *string        `json:"fielder_id,omitempty" yaml:"fielder_id,omitempty"`
	AssistFielderID *string        `json:"assist_fielder_id,omitempty" yaml:"assist_fielder_id,omitempty"`
	Commentary      *string        `json:"commentary,omitempty" yaml:"commentary,omitempty"`
	Pitch           *Coord         `json:"pitch,omitempty" yaml:"pitch,omitempty"`
	Shot            *Coord         `json:"shot,omitempty" yaml:"shot,omitempty"`
}

// Merge returns e with every non-nil patch field applied. An empty
// commentary string reverts to synthesized commentary.
func (p BallPatch) Merge(e BallEvent) BallEvent {
	if p.Runs != nil {
		e.Runs = *p.Runs
	}
	if p.ExtraRuns != nil {
		e.ExtraRuns = *p.ExtraRuns
	}
	if p.ExtraKind != nil {
		e.ExtraKind = p.ExtraKind.Normalize()
	}
	if p.IsWicket != nil {
		e.IsWicket = *p.IsWicket
		if !e.IsWicket {
			e.WicketKind = ""
			e.DismissedID = ""
			e.FielderID = ""
			e.AssistFielderID = ""
		}
	}
	if p.WicketKind != nil {
		e.WicketKind = *p.WicketKind
	}
	if p.DismissedID != nil {
		e.DismissedID = *p.DismissedID
	}
	if p.FielderID != nil {
		e.FielderID = *p.FielderID
	}
	if p.AssistFielderID != nil {
		e.AssistFielderID = *p.AssistFielderID
	}
	if p.Commentary != nil {
		e.Commentary = *p.Commentary
		e.CustomCommentary = *p.Commentary != ""
	}
	if p.Pitch != nil {
		c := *p.Pitch
		e.Pitch = &c
	}
	if p.Shot != nil {
		c := *p.Shot
		e.Shot = &c
	}
	return e
}

// MetadataPatch updates administrative fields without touching the log.
type MetadataPatch struct {
	Umpires      []string `json:"umpires,omitempty" yaml:"umpires,omitempty"`
	Session      *int     `json:"session,omitempty" yaml:"session,omitempty"`
	Day          *int     `json:"day,omitempty" yaml:"day,omitempty"`
	StrikerID    *string  `json:"striker_id,omitempty" yaml:"striker_id,omitempty"`
	NonStrikerID *string  `json:"non_striker_id,omitempty" yaml:"non_striker_id,omitempty"`
	BowlerID     *string  `json:"bowler_id,omitempty" yaml:"bowler_id,omitempty"`
	Result       *string  `json:"result,omitempty" yaml:"result,omitempty"`
}
