package scorecard

import (
	"fmt"
	"slices"

	"github.com/roach88/crease/internal/ir"
)

// Order selects timeline direction.
type Order string

const (
	Chronological Order = "chronological"
	Latest        Order = "latest" // newest ball first
)

// Class is the display classification of a ball.
type Class string

const (
	ClassWicket   Class = "wicket"
	ClassExtra    Class = "extra"
	ClassBoundary Class = "boundary"
	ClassDot      Class = "dot"
	ClassRun      Class = "run"
)

// Color is the tag a front end maps to its palette.
func (c Class) Color() string {
	switch c {
	case ClassWicket:
		return "red"
	case ClassExtra:
		return "yellow"
	case ClassBoundary:
		return "green"
	case ClassDot:
		return "gray"
	default:
		return "blue"
	}
}

// TimelineEntry is one ball relabelled for display.
type TimelineEntry struct {
	Timestamp  int64  `json:"timestamp"`
	Label      string `json:"label"` // "over.ball"
	Class      Class  `json:"class"`
	Symbol     string `json:"symbol"`
	Color      string `json:"color"`
	Runs       int    `json:"runs"` // everything the ball added to the total
	BowlerID   string `json:"bowler_id,omitempty"`
	StrikerID  string `json:"striker_id,omitempty"`
	Commentary string `json:"commentary,omitempty"`
}

// Timeline lists the deliveries and penalty awards of one innings.
// Markers are not balls and are left out.
func Timeline(s ir.MatchState, innings int, order Order) []TimelineEntry {
	var out []TimelineEntry
	for _, e := range s.InningsEvents(innings) {
		if e.Kind != ir.EventDelivery && e.Kind != ir.EventPenalty {
			continue
		}
		class, symbol := Classify(e)
		out = append(out, TimelineEntry{
			Timestamp:  e.Timestamp,
			Label:      fmt.Sprintf("%d.%d", e.Over, e.Ball),
			Class:      class,
			Symbol:     symbol,
			Color:      class.Color(),
			Runs:       e.TotalRuns(),
			BowlerID:   e.BowlerID,
			StrikerID:  e.StrikerID,
			Commentary: e.Commentary,
		})
	}
	if order == Latest {
		slices.Reverse(out)
	}
	return out
}

// Classify returns the class and short symbol of one event. A wicket wins
// over an extra, an extra over a boundary.
func Classify(e ir.BallEvent) (Class, string) {
	if e.Kind == ir.EventPenalty {
		return ClassExtra, fmt.Sprintf("%dpen", e.ExtraRuns)
	}
	if e.CountsAsWicket() {
		return ClassWicket, SymbolWicket
	}
	switch e.ExtraKind.Normalize() {
	case ir.ExtraWide:
		return ClassExtra, extraSymbol(e.ExtraRuns+1, "wd")
	case ir.ExtraNoBall:
		return ClassExtra, extraSymbol(e.Runs+e.ExtraRuns+1, "nb")
	case ir.ExtraBye:
		return ClassExtra, fmt.Sprintf("%db", e.ExtraRuns)
	case ir.ExtraLegBye:
		return ClassExtra, fmt.Sprintf("%dlb", e.ExtraRuns)
	}
	switch {
	case e.Runs == 4 || e.Runs == 6:
		return ClassBoundary, fmt.Sprint(e.Runs)
	case e.TotalRuns() == 0:
		return ClassDot, SymbolDot
	default:
		return ClassRun, fmt.Sprint(e.TotalRuns())
	}
}

func extraSymbol(n int, suffix string) string {
	if n <= 1 {
		return suffix
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
