package ir

// Format identifies the competition rules a match is played under.
type Format string

const (
	FormatT20    Format = "T20"
	FormatODI    Format = "ODI"
	FormatForty  Format = "FORTY"
	FormatT10    Format = "T10"
	FormatTest   Format = "TEST"
	FormatCustom Format = "CUSTOM"
)

// ValidFormats defines allowed formats.
var ValidFormats = map[Format]bool{
	FormatT20:    true,
	FormatODI:    true,
	FormatForty:  true,
	FormatT10:    true,
	FormatTest:   true,
	FormatCustom: true,
}

// DefaultSquadSize is the number of players per side when unspecified.
const DefaultSquadSize = 11

// DefaultFollowOnMargin is the trail that makes the follow-on available.
const DefaultFollowOnMargin = 200

// Player is one squad member.
type Player struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Role string `json:"role,omitempty" yaml:"role,omitempty"` // "bat", "bowl", "all", "wk"
}

// Team is a named roster.
type Team struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Players []Player `json:"players" yaml:"players"`
}

// PlayerIDs returns the roster ids in order.
func (t Team) PlayerIDs() []string {
	ids := make([]string, len(t.Players))
	for i, p := range t.Players {
		ids[i] = p.ID
	}
	return ids
}

// TestConfig holds multi-day settings.
type TestConfig struct {
	MaxDays        int `json:"max_days" yaml:"max_days"`
	OversPerDay    int `json:"overs_per_day" yaml:"overs_per_day"`
	FollowOnMargin int `json:"follow_on_margin" yaml:"follow_on_margin"`
}

// MatchConfig is the compiled match definition.
type MatchConfig struct {
	Name          string      `json:"name,omitempty" yaml:"name,omitempty"`
	Format        Format      `json:"format" yaml:"format"`
	Overs         int         `json:"overs,omitempty" yaml:"overs,omitempty"` // per side; overrides the format baseline
	SquadSize     int         `json:"squad_size" yaml:"squad_size"`
	FlexibleSquad bool        `json:"flexible_squad,omitempty" yaml:"flexible_squad,omitempty"`
	Test          *TestConfig `json:"test,omitempty" yaml:"test,omitempty"`
	Teams         []Team      `json:"teams" yaml:"teams"`
}

// IsTest reports whether multi-day rules apply.
func (c MatchConfig) IsTest() bool {
	return c.Format == FormatTest
}

// Squad returns the effective squad size.
func (c MatchConfig) Squad() int {
	if c.SquadSize <= 0 {
		return DefaultSquadSize
	}
	return c.SquadSize
}

// FollowOnMargin returns the configured margin or the default.
func (c MatchConfig) FollowOnMargin() int {
	if c.Test == nil || c.Test.FollowOnMargin <= 0 {
		return DefaultFollowOnMargin
	}
	return c.Test.FollowOnMargin
}

// Team looks up a roster by id.
func (c MatchConfig) Team(id string) (Team, bool) {
	for _, t := range c.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// Opponent returns the id of the other team.
func (c MatchConfig) Opponent(id string) string {
	for _, t := range c.Teams {
		if t.ID != id {
			return t.ID
		}
	}
	return ""
}

// Clone returns a deep copy.
func (c MatchConfig) Clone() MatchConfig {
	out := c
	if c.Test != nil {
		t := *c.Test
		out.Test = &t
	}
	if c.Teams != nil {
		out.Teams = make([]Team, len(c.Teams))
		for i, t := range c.Teams {
			out.Teams[i] = t
			out.Teams[i].Players = append([]Player(nil), t.Players...)
		}
	}
	return out
}
