package scorecard

import (
	"math"

	"github.com/roach88/crease/internal/ir"
)

// playerNames maps every configured player id to a display name.
func playerNames(cfg ir.MatchConfig) map[string]string {
	names := make(map[string]string)
	for _, t := range cfg.Teams {
		for _, p := range t.Players {
			if p.Name != "" {
				names[p.ID] = p.Name
			}
		}
	}
	return names
}

// nameOf falls back to the id for players missing from the config.
func nameOf(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}

func battingTeam(s ir.MatchState, innings int) string {
	if innings == s.Innings {
		return s.BattingTeamID
	}
	if r, ok := s.ClosedInningsNumber(innings); ok {
		return r.TeamID
	}
	return ""
}

func bowlingTeam(s ir.MatchState, innings int) string {
	if innings == s.Innings {
		return s.BowlingTeamID
	}
	if r, ok := s.ClosedInningsNumber(innings); ok {
		return s.Config.Opponent(r.TeamID)
	}
	return ""
}

// Squad returns the players of a team, or nil for an unknown id.
func Squad(cfg ir.MatchConfig, teamID string) []ir.Player {
	if t, ok := cfg.Team(teamID); ok {
		return t.Players
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
