package rules

import (
	"sort"

	"github.com/roach88/crease/internal/ir"
)

// Quota is the 1-in-5 bowler allocation for an innings.
type Quota struct {
	Base      int `json:"base"`      // floor(n/5)
	Remainder int `json:"remainder"` // bowlers allowed one bonus over
	Max       int `json:"max"`       // ceil(n/5)
}

// QuotaFor computes the quota for an innings of oversAllowed overs.
func QuotaFor(oversAllowed int) Quota {
	q := Quota{Base: oversAllowed / 5, Remainder: oversAllowed % 5}
	q.Max = q.Base
	if q.Remainder > 0 {
		q.Max++
	}
	return q
}

// OversBowled counts, per bowler, the distinct overs in which they have
// delivered at least one ball of the live innings. A part over counts.
func OversBowled(s ir.MatchState) map[string]int {
	seen := make(map[string]map[int]bool)
	for _, e := range s.Events {
		if e.Innings != s.Innings || e.Kind != ir.EventDelivery || e.BowlerID == "" {
			continue
		}
		if seen[e.BowlerID] == nil {
			seen[e.BowlerID] = make(map[int]bool)
		}
		seen[e.BowlerID][e.Over] = true
	}
	out := make(map[string]int, len(seen))
	for id, overs := range seen {
		out[id] = len(overs)
	}
	return out
}

// lastOverBowler returns who bowled the last legal ball when the innings
// sits exactly on an over boundary.
func lastOverBowler(s ir.MatchState) string {
	if s.Balls == 0 || s.Balls%ir.BallsPerOver != 0 {
		return ""
	}
	for i := len(s.Events) - 1; i >= 0; i-- {
		e := s.Events[i]
		if e.Innings == s.Innings && e.IsLegal() {
			return e.BowlerID
		}
	}
	return ""
}

// CanBowl checks whether bowlerID may start the next over. Quotas apply
// to limited-overs formats only; the consecutive-over rule applies to all.
func CanBowl(s ir.MatchState, bowlerID string) error {
	bowled := OversBowled(s)
	n := bowled[bowlerID]

	if !s.Config.IsTest() {
		q := QuotaFor(OversAllowed(s.Config, s.Adjustments))
		if n >= q.Max {
			return &BlockedError{Code: CodeQuotaReached, BowlerID: bowlerID, Bowled: n, Limit: q.Max}
		}
		if q.Remainder > 0 && n == q.Base {
			bonus := 0
			for id, c := range bowled {
				if id != bowlerID && c > q.Base {
					bonus++
				}
			}
			if bonus >= q.Remainder {
				return &BlockedError{Code: CodeBonusOversExhausted, BowlerID: bowlerID, Bowled: n, Limit: q.Base}
			}
		}
	}

	if last := lastOverBowler(s); last != "" && last == bowlerID {
		return &BlockedError{Code: CodeConsecutiveOver, BowlerID: bowlerID, Bowled: n}
	}
	return nil
}

// BowlerAvailability is one row of the availability table.
type BowlerAvailability struct {
	BowlerID    string    `json:"bowler_id"`
	OversBowled int       `json:"overs_bowled"`
	Remaining   int       `json:"remaining"` // -1 when unlimited
	Blocked     BlockCode `json:"blocked,omitempty"`
}

// Availability reports every squad member's standing for the next over,
// in squad order. Players who have bowled but are missing from squad are
// appended sorted by id.
func Availability(s ir.MatchState, squad []string) []BowlerAvailability {
	bowled := OversBowled(s)
	ids := append([]string(nil), squad...)
	listed := make(map[string]bool, len(squad))
	for _, id := range squad {
		listed[id] = true
	}
	var extra []string
	for id := range bowled {
		if !listed[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	ids = append(ids, extra...)

	q := QuotaFor(OversAllowed(s.Config, s.Adjustments))
	out := make([]BowlerAvailability, 0, len(ids))
	for _, id := range ids {
		row := BowlerAvailability{BowlerID: id, OversBowled: bowled[id], Remaining: -1}
		if !s.Config.IsTest() {
			row.Remaining = q.Max - bowled[id]
			if row.Remaining < 0 {
				row.Remaining = 0
			}
		}
		if err := CanBowl(s, id); err != nil {
			row.Blocked = err.(*BlockedError).Code
		}
		out = append(out, row)
	}
	return out
}
