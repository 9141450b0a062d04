package scorecard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/rules"
)

// BatterStatus is the state of a batter at the end of the log.
type BatterStatus string

const (
	StatusNotOut      BatterStatus = "not out"
	StatusOut         BatterStatus = "out"
	StatusRetiredHurt BatterStatus = "retired hurt"
	StatusDidNotBat   BatterStatus = "did not bat"
)

// Symbols used in a batter's scoring sequence.
const (
	SymbolDot    = "•"
	SymbolWicket = "W"
)

// BattingRow is one batter's line.
type BattingRow struct {
	PlayerID   string       `json:"player_id"`
	Name       string       `json:"name"`
	Runs       int          `json:"runs"`
	Balls      int          `json:"balls"` // legal deliveries faced
	Fours      int          `json:"fours"`
	Sixes      int          `json:"sixes"`
	Sequence   string       `json:"sequence"`
	StrikeRate float64      `json:"strike_rate"`
	Status     BatterStatus `json:"status"`
	Dismissal  string       `json:"dismissal,omitempty"`
}

// FallOfWicket is one entry of the fall-of-wickets line.
type FallOfWicket struct {
	Wicket   int    `json:"wicket"`
	Score    int    `json:"score"`
	Overs    string `json:"overs"`
	PlayerID string `json:"player_id"`
}

// Extras is the breakdown of runs not credited to a batter.
type Extras struct {
	Wides   int `json:"wides"`
	NoBalls int `json:"no_balls"`
	Byes    int `json:"byes"`
	LegByes int `json:"leg_byes"`
	Penalty int `json:"penalty"`
}

// Total sums every category.
func (x Extras) Total() int {
	return x.Wides + x.NoBalls + x.Byes + x.LegByes + x.Penalty
}

// BattingCard is the batting side of one innings.
type BattingCard struct {
	Innings       int            `json:"innings"`
	TeamID        string         `json:"team_id"`
	Rows          []BattingRow   `json:"rows"`
	FallOfWickets []FallOfWicket `json:"fall_of_wickets"`
	Extras        Extras         `json:"extras"`
	Total         int            `json:"total"` // batter runs + extras
	Wickets       int            `json:"wickets"`
	Overs         string         `json:"overs"`
}

// Batting folds one innings into a batting card. Rows follow squad order;
// anyone who batted without being in squad is appended in order of
// appearance.
func Batting(s ir.MatchState, innings int, squad []ir.Player) BattingCard {
	names := playerNames(s.Config)
	card := BattingCard{Innings: innings, TeamID: battingTeam(s, innings)}

	rows := make(map[string]*BattingRow)
	var order []string
	row := func(id string) *BattingRow {
		if r, ok := rows[id]; ok {
			return r
		}
		r := &BattingRow{PlayerID: id, Name: nameOf(names, id), Status: StatusDidNotBat}
		rows[id] = r
		order = append(order, id)
		return r
	}
	for _, p := range squad {
		row(p.ID)
	}
	arrive := func(id string) {
		if id == "" {
			return
		}
		r := row(id)
		if r.Status == StatusDidNotBat || r.Status == StatusRetiredHurt {
			r.Status = StatusNotOut
		}
	}

	var (
		batRuns, legal, wickets int
		seq                     = make(map[string]*strings.Builder)
	)
	ceiling := rules.WicketCeiling(s.Config)
	fall := func(e ir.BallEvent, id string) {
		if wickets >= ceiling {
			return
		}
		wickets++
		card.FallOfWickets = append(card.FallOfWickets, FallOfWicket{
			Wicket:   wickets,
			Score:    e.TeamScore,
			Overs:    ir.OversString(legal),
			PlayerID: id,
		})
	}

	for _, e := range s.InningsEvents(innings) {
		switch e.Kind {
		case ir.EventDelivery:
		case ir.EventPenalty:
			card.Extras.Penalty += e.ExtraRuns
			continue
		case ir.EventRetirement:
			r := row(e.DismissedID)
			if e.Retirement == ir.RetiredOut {
				r.Status = StatusOut
				r.Dismissal = "retired out"
				fall(e, e.DismissedID)
			} else {
				r.Status = StatusRetiredHurt
				r.Dismissal = "retired hurt"
			}
			continue
		default:
			arrive(e.StrikerID)
			arrive(e.NonStrikerID)
			if e.Kind == ir.EventSubstitution {
				if r, ok := rows[e.OutgoingID]; ok && r.Status == StatusNotOut {
					arrive(e.IncomingID)
				}
			}
			continue
		}

		arrive(e.StrikerID)
		arrive(e.NonStrikerID)
		if e.IsLegal() {
			legal++
		}
		batRuns += e.Runs
		addExtras(&card.Extras, e)

		if e.StrikerID != "" {
			r := rows[e.StrikerID]
			r.Runs += e.Runs
			switch e.Runs {
			case 4:
				r.Fours++
			case 6:
				r.Sixes++
			}
			if e.IsLegal() {
				r.Balls++
			}
			if e.ExtraKind.Normalize() != ir.ExtraWide {
				b := seq[e.StrikerID]
				if b == nil {
					b = &strings.Builder{}
					seq[e.StrikerID] = b
				}
				b.WriteString(sequenceSymbol(e))
			}
		}

		if e.IsWicket && e.DismissedID != "" {
			d := ir.LookupDismissal(e.WicketKind)
			r := row(e.DismissedID)
			if d.CountsAsWicket {
				r.Status = StatusOut
				fall(e, e.DismissedID)
			} else {
				r.Status = StatusRetiredHurt
			}
			r.Dismissal = DescribeDismissal(e, names)
		}
	}

	for _, id := range order {
		r := rows[id]
		if b := seq[id]; b != nil {
			r.Sequence = b.String()
		}
		r.StrikeRate = strikeRate(r.Runs, r.Balls)
		card.Rows = append(card.Rows, *r)
	}
	card.Total = batRuns + card.Extras.Total()
	card.Wickets = wickets
	card.Overs = ir.OversString(legal)
	return card
}

func addExtras(x *Extras, e ir.BallEvent) {
	switch e.ExtraKind.Normalize() {
	case ir.ExtraWide:
		x.Wides += e.ExtraRuns + e.ExtraKind.Penalty()
	case ir.ExtraNoBall:
		x.NoBalls += e.ExtraRuns + e.ExtraKind.Penalty()
	case ir.ExtraLegBye:
		x.LegByes += e.ExtraRuns
	default:
		// Extra runs on a plain delivery are overthrow byes.
		x.Byes += e.ExtraRuns
	}
}

// sequenceSymbol is the batter's view of one ball faced.
func sequenceSymbol(e ir.BallEvent) string {
	switch {
	case e.IsWicket && e.DismissedID == e.StrikerID && ir.LookupDismissal(e.WicketKind).CountsAsWicket:
		return SymbolWicket
	case e.Runs == 0:
		return SymbolDot
	default:
		return strconv.Itoa(e.Runs)
	}
}

func strikeRate(runs, balls int) float64 {
	if balls == 0 {
		return 0
	}
	return round2(float64(runs) * 100 / float64(balls))
}

// DescribeDismissal renders the scorebook line for a wicket delivery,
// for example "c Smith b Jones" or "run out (Smith/Brown)".
func DescribeDismissal(e ir.BallEvent, names map[string]string) string {
	bowler := nameOf(names, e.BowlerID)
	fielder := nameOf(names, e.FielderID)
	switch e.WicketKind {
	case ir.DismissalBowled:
		return "b " + bowler
	case ir.DismissalCaught:
		if e.FielderID == "" || e.FielderID == e.BowlerID {
			return "c & b " + bowler
		}
		return fmt.Sprintf("c %s b %s", fielder, bowler)
	case ir.DismissalLBW:
		return "lbw b " + bowler
	case ir.DismissalStumped:
		return fmt.Sprintf("st %s b %s", fielder, bowler)
	case ir.DismissalHitWicket:
		return "hit wicket b " + bowler
	case ir.DismissalRunOut:
		switch {
		case e.FielderID == "":
			return "run out"
		case e.AssistFielderID != "":
			return fmt.Sprintf("run out (%s/%s)", fielder, nameOf(names, e.AssistFielderID))
		default:
			return fmt.Sprintf("run out (%s)", fielder)
		}
	default:
		return ir.LookupDismissal(e.WicketKind).Short
	}
}
