package scorecard

import (
	"cmp"
	"slices"

	"github.com/roach88/crease/internal/ir"
)

// Point weights for the MVP ranking.
const (
	PointsPerRun      = 1
	PointsPerFour     = 1 // on top of the runs
	PointsPerSix      = 2
	PointsFifty       = 8
	PointsHundred     = 16 // on top of the fifty bonus
	PointsPerWicket   = 25
	PointsPerMaiden   = 12
	PointsPerDot      = 1
	PointsThreeWicket = 4
	PointsFiveWicket  = 8 // on top of the three-wicket bonus
	PointsCatch       = 8
	PointsStumping    = 12
	PointsRunOut      = 12 // direct hit; split when assisted
	PointsAssist      = 6

	// Rate bonuses need a minimum sample.
	minBallsForStrikeRate = 10
	minBallsForEconomy    = 12
)

// MVPEntry is one player's points.
type MVPEntry struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	TeamID   string `json:"team_id"`
	Batting  int    `json:"batting"`
	Bowling  int    `json:"bowling"`
	Fielding int    `json:"fielding"`
	Total    int    `json:"total"`
}

// MVP ranks every player of squads across all innings in the log,
// highest total first, ties by player id.
func MVP(s ir.MatchState, squads []ir.Team) []MVPEntry {
	names := playerNames(s.Config)
	entries := make(map[string]*MVPEntry)
	entry := func(id, team string) *MVPEntry {
		if e, ok := entries[id]; ok {
			return e
		}
		e := &MVPEntry{PlayerID: id, Name: nameOf(names, id), TeamID: team}
		entries[id] = e
		return e
	}
	for _, t := range squads {
		for _, p := range t.Players {
			entry(p.ID, t.ID)
		}
	}

	for n := 1; n <= s.Innings; n++ {
		batTeam := battingTeam(s, n)
		bowlTeam := bowlingTeam(s, n)
		for _, r := range Batting(s, n, nil).Rows {
			entry(r.PlayerID, batTeam).Batting += battingPoints(r)
		}
		for _, r := range Bowling(s, n).Rows {
			entry(r.PlayerID, bowlTeam).Bowling += bowlingPoints(r)
		}
		for _, e := range s.InningsEvents(n) {
			fieldingPoints(e, func(id string, pts int) {
				entry(id, bowlTeam).Fielding += pts
			})
		}
	}

	out := make([]MVPEntry, 0, len(entries))
	for _, e := range entries {
		e.Total = e.Batting + e.Bowling + e.Fielding
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b MVPEntry) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	return out
}

func battingPoints(r BattingRow) int {
	if r.Status == StatusDidNotBat {
		return 0
	}
	pts := r.Runs*PointsPerRun + r.Fours*PointsPerFour + r.Sixes*PointsPerSix
	if r.Runs >= 50 {
		pts += PointsFifty
	}
	if r.Runs >= 100 {
		pts += PointsHundred
	}
	if r.Balls >= minBallsForStrikeRate {
		switch sr := r.StrikeRate; {
		case sr >= 170:
			pts += 6
		case sr >= 150:
			pts += 4
		case sr >= 130:
			pts += 2
		case sr < 70:
			pts -= 2
		}
	}
	return pts
}

func bowlingPoints(r BowlingRow) int {
	pts := r.Wickets*PointsPerWicket + r.Maidens*PointsPerMaiden + r.Dots*PointsPerDot
	if r.Wickets >= 3 {
		pts += PointsThreeWicket
	}
	if r.Wickets >= 5 {
		pts += PointsFiveWicket
	}
	if r.Balls >= minBallsForEconomy {
		switch econ := r.Economy; {
		case econ < 5:
			pts += 6
		case econ < 6:
			pts += 4
		case econ < 7:
			pts += 2
		case econ > 10:
			pts -= 2
		}
	}
	return pts
}

// fieldingPoints credits the fielders named on a wicket delivery.
func fieldingPoints(e ir.BallEvent, credit func(id string, pts int)) {
	if e.Kind != ir.EventDelivery || !e.IsWicket {
		return
	}
	switch e.WicketKind {
	case ir.DismissalCaught:
		switch {
		case e.FielderID != "":
			credit(e.FielderID, PointsCatch)
		case e.BowlerID != "":
			credit(e.BowlerID, PointsCatch) // caught and bowled
		}
	case ir.DismissalStumped:
		if e.FielderID != "" {
			credit(e.FielderID, PointsStumping)
		}
	case ir.DismissalRunOut:
		if e.FielderID == "" {
			return
		}
		if e.AssistFielderID != "" {
			credit(e.FielderID, PointsRunOut/2)
			credit(e.AssistFielderID, PointsRunOut/2)
			return
		}
		credit(e.FielderID, PointsRunOut)
		return
	}
	if e.AssistFielderID != "" {
		credit(e.AssistFielderID, PointsAssist)
	}
}
