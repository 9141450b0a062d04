package scorecard

import (
	"github.com/roach88/crease/internal/ir"
)

// OverGrid is the raw events one bowler delivered in one over.
type OverGrid struct {
	Over   int           `json:"over"`
	Events []ir.BallEvent `json:"events"`
}

// BowlingRow is one bowler's figures.
type BowlingRow struct {
	PlayerID string     `json:"player_id"`
	Name     string     `json:"name"`
	Balls    int        `json:"balls"`
	Overs    string     `json:"overs"`
	Maidens  int        `json:"maidens"`
	Runs     int        `json:"runs"`
	Wickets  int        `json:"wickets"`
	Dots     int        `json:"dots"`
	Wides    int        `json:"wides"`
	NoBalls  int        `json:"no_balls"`
	Economy  float64    `json:"economy"`
	Grid     []OverGrid `json:"grid"`
}

// BowlingCard is the bowling side of one innings.
type BowlingCard struct {
	Innings int          `json:"innings"`
	TeamID  string       `json:"team_id"`
	Rows    []BowlingRow `json:"rows"`
}

// Conceded is what a delivery costs the bowler: runs off the bat plus
// everything on a wide or no-ball. Byes and leg-byes are not charged.
func Conceded(e ir.BallEvent) int {
	if e.Kind != ir.EventDelivery {
		return 0
	}
	switch e.ExtraKind.Normalize() {
	case ir.ExtraWide, ir.ExtraNoBall:
		return e.Runs + e.ExtraRuns + e.ExtraKind.Penalty()
	default:
		return e.Runs
	}
}

// Bowling folds one innings into bowling figures, bowlers in order of
// first delivery.
func Bowling(s ir.MatchState, innings int) BowlingCard {
	names := playerNames(s.Config)
	card := BowlingCard{Innings: innings, TeamID: bowlingTeam(s, innings)}

	type overTally struct {
		legal, conceded int
	}
	rows := make(map[string]*BowlingRow)
	overs := make(map[string]map[int]*overTally)
	var order []string

	for _, e := range s.InningsEvents(innings) {
		if e.Kind != ir.EventDelivery || e.BowlerID == "" {
			continue
		}
		r, ok := rows[e.BowlerID]
		if !ok {
			r = &BowlingRow{PlayerID: e.BowlerID, Name: nameOf(names, e.BowlerID)}
			rows[e.BowlerID] = r
			overs[e.BowlerID] = make(map[int]*overTally)
			order = append(order, e.BowlerID)
		}

		cost := Conceded(e)
		r.Runs += cost
		switch e.ExtraKind.Normalize() {
		case ir.ExtraWide:
			r.Wides += e.ExtraRuns + 1
		case ir.ExtraNoBall:
			r.NoBalls++
		}
		if e.IsLegal() {
			r.Balls++
			if cost == 0 {
				r.Dots++
			}
		}
		if e.CreditBowler {
			r.Wickets++
		}

		if n := len(r.Grid); n == 0 || r.Grid[n-1].Over != e.Over {
			r.Grid = append(r.Grid, OverGrid{Over: e.Over})
		}
		g := &r.Grid[len(r.Grid)-1]
		g.Events = append(g.Events, e.Clone())

		t := overs[e.BowlerID][e.Over]
		if t == nil {
			t = &overTally{}
			overs[e.BowlerID][e.Over] = t
		}
		if e.IsLegal() {
			t.legal++
		}
		t.conceded += cost
	}

	for _, id := range order {
		r := rows[id]
		// A maiden needs the whole over from one bowler.
		for _, t := range overs[id] {
			if t.legal == ir.BallsPerOver && t.conceded == 0 {
				r.Maidens++
			}
		}
		r.Overs = ir.OversString(r.Balls)
		r.Economy = economy(r.Runs, r.Balls)
		card.Rows = append(card.Rows, *r)
	}
	return card
}

func economy(runs, balls int) float64 {
	if balls == 0 {
		return 0
	}
	return round2(float64(runs) * ir.BallsPerOver / float64(balls))
}
