package scorecard

import (
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/testmatch"
)

// InningsCard pairs both sides of one innings.
type InningsCard struct {
	Batting BattingCard `json:"batting"`
	Bowling BowlingCard `json:"bowling"`
}

// Card is the full match scorecard.
type Card struct {
	MatchID string        `json:"match_id"`
	Name    string        `json:"name"`
	Format  ir.Format     `json:"format"`
	Teams   []ir.Team     `json:"-"`
	Innings []InningsCard `json:"innings"`
	Result  string        `json:"result,omitempty"`
}

// Build assembles the card for every innings played so far.
func Build(s ir.MatchState) Card {
	card := Card{
		MatchID: s.MatchID,
		Name:    s.Config.Name,
		Format:  s.Config.Format,
		Teams:   s.Config.Teams,
		Result:  s.Result,
	}
	for n := 1; n <= s.Innings; n++ {
		card.Innings = append(card.Innings, InningsCard{
			Batting: Batting(s, n, Squad(s.Config, battingTeam(s, n))),
			Bowling: Bowling(s, n),
		})
	}
	if card.Result == "" && s.Config.IsTest() {
		card.Result = testmatch.Status(s).Summary
	}
	return card
}

// Render writes card as plain text.
func Render(w io.Writer, card Card) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	p.Fprintf(tw, "%s (%s)\n", card.Name, card.Format)
	for _, in := range card.Innings {
		bat := in.Batting
		p.Fprintf(tw, "\nInnings %d: %s %d/%d (%s ov)\n\n", bat.Innings, teamName(card.Teams, bat.TeamID), bat.Total, bat.Wickets, bat.Overs)

		p.Fprintf(tw, "Batter\tDismissal\tR\tB\t4s\t6s\tSR\tSequence\n")
		var dnb []string
		for _, r := range bat.Rows {
			if r.Status == StatusDidNotBat {
				dnb = append(dnb, r.Name)
				continue
			}
			how := r.Dismissal
			if r.Status == StatusNotOut {
				how = string(StatusNotOut)
			}
			p.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.2f\t%s\n", r.Name, how, r.Runs, r.Balls, r.Fours, r.Sixes, r.StrikeRate, r.Sequence)
		}

		x := bat.Extras
		p.Fprintf(tw, "Extras\t(w %d, nb %d, b %d, lb %d, pen %d)\t%d\n", x.Wides, x.NoBalls, x.Byes, x.LegByes, x.Penalty, x.Total())
		p.Fprintf(tw, "Total\t(%s ov)\t%d/%d\n", bat.Overs, bat.Total, bat.Wickets)
		if len(dnb) > 0 {
			p.Fprintf(tw, "Did not bat: %s\n", strings.Join(dnb, ", "))
		}
		if len(bat.FallOfWickets) > 0 {
			parts := make([]string, len(bat.FallOfWickets))
			for i, f := range bat.FallOfWickets {
				parts[i] = p.Sprintf("%d-%d (%s, %s)", f.Wicket, f.Score, nameFor(card.Teams, f.PlayerID), f.Overs)
			}
			p.Fprintf(tw, "Fall of wickets: %s\n", strings.Join(parts, ", "))
		}

		p.Fprintf(tw, "\nBowler\tO\tM\tR\tW\tEcon\tDots\n")
		for _, r := range in.Bowling.Rows {
			p.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.2f\t%d\n", r.Name, r.Overs, r.Maidens, r.Runs, r.Wickets, r.Economy, r.Dots)
		}
	}
	if card.Result != "" {
		p.Fprintf(tw, "\nResult: %s\n", card.Result)
	}
	return tw.Flush()
}

func teamName(teams []ir.Team, id string) string {
	for _, t := range teams {
		if t.ID == id && t.Name != "" {
			return t.Name
		}
	}
	return id
}

func nameFor(teams []ir.Team, id string) string {
	for _, t := range teams {
		for _, p := range t.Players {
			if p.ID == id && p.Name != "" {
				return p.Name
			}
		}
	}
	return id
}

// RenderMVP writes the ranking as a table.
func RenderMVP(w io.Writer, entries []MVPEntry) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p.Fprintf(tw, "#\tPlayer\tTeam\tBat\tBowl\tField\tTotal\n")
	for i, e := range entries {
		p.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\n", i+1, e.Name, e.TeamID, e.Batting, e.Bowling, e.Fielding, e.Total)
	}
	return tw.Flush()
}
