package harness

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/rules"
	"github.com/roach88/crease/internal/scorecard"
	"github.com/roach88/crease/internal/testmatch"
)

// AssertionError is returned when an assertion fails.
// It includes enough context to debug the failure without rerunning.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Subject  string // what was inspected, e.g. "batter h1" or "event -1"
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Subject != "" {
		fmt.Fprintf(&buf, " (%s)", e.Subject)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the final state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(s ir.MatchState, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(s, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(s ir.MatchState, a Assertion) error {
	switch a.Type {
	case AssertState:
		return matchFields(a.Type, "live state", stateView(s), a.Expect)
	case AssertEvent:
		return assertEvent(s, a)
	case AssertEventCount:
		return assertEventCount(s, a)
	case AssertBatter:
		return assertBatter(s, a)
	case AssertBowler:
		return assertBowler(s, a)
	case AssertCanBowl:
		return assertCanBowl(s, a)
	case AssertMVP:
		return assertMVP(s, a)
	case AssertTestStatus:
		return matchFields(a.Type, "test match", testView(s, a.Team), a.Expect)
	case AssertReplay:
		return assertReplay(s)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func stateView(s ir.MatchState) map[string]any {
	view := map[string]any{
		"innings":         s.Innings,
		"batting_team":    s.BattingTeamID,
		"bowling_team":    s.BowlingTeamID,
		"score":           s.Score,
		"wickets":         s.Wickets,
		"balls":           s.Balls,
		"overs":           ir.OversString(s.Balls),
		"striker":         s.StrikerID,
		"non_striker":     s.NonStrikerID,
		"bowler":          s.BowlerID,
		"follow_on":       s.FollowOn,
		"events":          len(s.Events),
		"closed_innings":  len(s.ClosedInnings),
		"completed":       s.Completed,
		"result":          s.Result,
		"overs_lost":      s.Adjustments.OversLost,
		"declared":        s.Adjustments.Declared,
		"concluded":       s.Adjustments.Concluded,
		"session":         s.Adjustments.Session,
		"substitutions":   len(s.Adjustments.Substitutions),
		"timer_paused":    s.Timer.Paused,
		"allowance":       s.Timer.AllowanceSeconds,
		"end_reason":      rules.InningsEnd(s),
		"balls_remaining": rules.BallsRemaining(s),
		"overs_allowed":   rules.OversAllowed(s.Config, s.Adjustments),
	}
	if s.Target != nil {
		view["target"] = *s.Target
	}
	if s.Test != nil {
		view["day"] = s.Test.CurrentDay
		view["lead"] = s.Test.Lead
	}
	return view
}

func eventView(e ir.BallEvent) map[string]any {
	return map[string]any{
		"timestamp":     e.Timestamp,
		"innings":       e.Innings,
		"kind":          string(e.Kind),
		"runs":          e.Runs,
		"extra_runs":    e.ExtraRuns,
		"extra_kind":    string(e.ExtraKind),
		"total":         e.TotalRuns(),
		"is_wicket":     e.IsWicket,
		"wicket_kind":   string(e.WicketKind),
		"dismissed":     e.DismissedID,
		"fielder":       e.FielderID,
		"credit_bowler": e.CreditBowler,
		"striker":       e.StrikerID,
		"non_striker":   e.NonStrikerID,
		"bowler":        e.BowlerID,
		"over":          e.Over,
		"ball":          e.Ball,
		"team_score":    e.TeamScore,
		"commentary":    e.Commentary,
	}
}

func assertEvent(s ir.MatchState, a Assertion) error {
	i := a.Index
	if i < 0 {
		i += len(s.Events)
	}
	subject := fmt.Sprintf("event %d", a.Index)
	if i < 0 || i >= len(s.Events) {
		return &AssertionError{
			Type:     a.Type,
			Subject:  subject,
			Expected: fmt.Sprintf("event at index %d", a.Index),
			Actual:   fmt.Sprintf("log holds %d events", len(s.Events)),
		}
	}
	return matchFields(a.Type, subject, eventView(s.Events[i]), a.Expect)
}

func assertEventCount(s ir.MatchState, a Assertion) error {
	count := 0
	for _, e := range s.Events {
		if a.Kind == "" || e.Kind == a.Kind {
			count++
		}
	}
	if count != *a.Count {
		what := "events"
		if a.Kind != "" {
			what = string(a.Kind) + " events"
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d %s", *a.Count, what),
			Actual:   fmt.Sprintf("%d %s", count, what),
		}
	}
	return nil
}

// inningsCard returns the scorecard of the selected innings.
func inningsCard(s ir.MatchState, a Assertion) (scorecard.InningsCard, error) {
	n := a.Innings
	if n == 0 {
		n = s.Innings
	}
	card := scorecard.Build(s)
	if n < 1 || n > len(card.Innings) {
		return scorecard.InningsCard{}, &AssertionError{
			Type:     a.Type,
			Subject:  a.Player,
			Expected: fmt.Sprintf("innings %d", n),
			Actual:   fmt.Sprintf("%d innings played", len(card.Innings)),
		}
	}
	return card.Innings[n-1], nil
}

func assertBatter(s ir.MatchState, a Assertion) error {
	in, err := inningsCard(s, a)
	if err != nil {
		return err
	}
	for _, row := range in.Batting.Rows {
		if row.PlayerID == a.Player {
			return matchFields(a.Type, "batter "+a.Player, map[string]any{
				"runs":      row.Runs,
				"balls":     row.Balls,
				"fours":     row.Fours,
				"sixes":     row.Sixes,
				"sequence":  row.Sequence,
				"status":    string(row.Status),
				"dismissal": row.Dismissal,
			}, a.Expect)
		}
	}
	return &AssertionError{Type: a.Type, Subject: "batter " + a.Player, Expected: "a batting row", Actual: "not in the card"}
}

func assertBowler(s ir.MatchState, a Assertion) error {
	in, err := inningsCard(s, a)
	if err != nil {
		return err
	}
	for _, row := range in.Bowling.Rows {
		if row.PlayerID == a.Player {
			return matchFields(a.Type, "bowler "+a.Player, map[string]any{
				"balls":    row.Balls,
				"overs":    row.Overs,
				"maidens":  row.Maidens,
				"runs":     row.Runs,
				"wickets":  row.Wickets,
				"dots":     row.Dots,
				"wides":    row.Wides,
				"no_balls": row.NoBalls,
			}, a.Expect)
		}
	}
	return &AssertionError{Type: a.Type, Subject: "bowler " + a.Player, Expected: "a bowling row", Actual: "not in the card"}
}

func assertCanBowl(s ir.MatchState, a Assertion) error {
	got := ""
	if err := rules.CanBowl(s, a.Player); err != nil {
		var be *rules.BlockedError
		if !errors.As(err, &be) {
			return err
		}
		got = string(be.Code)
	}
	if got != a.Code {
		return &AssertionError{
			Type:     a.Type,
			Subject:  "bowler " + a.Player,
			Expected: describeBlock(a.Code),
			Actual:   describeBlock(got),
		}
	}
	return nil
}

func describeBlock(code string) string {
	if code == "" {
		return "may bowl"
	}
	return "blocked by " + code
}

func assertMVP(s ir.MatchState, a Assertion) error {
	entries := scorecard.MVP(s, s.Config.Teams)
	subject := fmt.Sprintf("rank %d", a.Index)
	if a.Index >= len(entries) {
		return &AssertionError{
			Type:     a.Type,
			Subject:  subject,
			Expected: fmt.Sprintf("at least %d ranked players", a.Index+1),
			Actual:   fmt.Sprintf("%d ranked", len(entries)),
		}
	}
	m := entries[a.Index]
	return matchFields(a.Type, subject, map[string]any{
		"player_id": m.PlayerID,
		"team_id":   m.TeamID,
		"batting":   m.Batting,
		"bowling":   m.Bowling,
		"fielding":  m.Fielding,
		"total":     m.Total,
	}, a.Expect)
}

func testView(s ir.MatchState, team string) map[string]any {
	v := testmatch.Status(s)
	f := testmatch.FollowOn(s)
	view := map[string]any{
		"state":              v.State,
		"winner":             v.Winner,
		"margin":             v.Margin,
		"margin_unit":        v.MarginUnit,
		"summary":            v.Summary,
		"follow_on_eligible": f.Eligible,
		"follow_on_trail":    f.Trail,
	}
	if team != "" {
		view["lead"] = testmatch.Lead(s, team)
	}
	if target, chaser, ok := testmatch.FourthInningsTarget(s); ok {
		view["target"] = target
		view["chaser"] = chaser
	}
	return view
}

func assertReplay(s ir.MatchState) error {
	if err := engine.CheckFold(s); err != nil {
		return &AssertionError{Type: AssertReplay, Subject: "fold", Expected: "log folds to the live counters", Actual: err.Error()}
	}
	want := ir.MustStateHash(s)
	if got := ir.MustStateHash(engine.Replay(s)); got != want {
		return &AssertionError{Type: AssertReplay, Subject: "identity", Expected: want, Actual: got}
	}
	return nil
}

// matchFields checks that actual holds every expected field (subset match).
// Keys are visited in sorted order so the first reported mismatch is stable.
func matchFields(typ, subject string, actual, expected map[string]any) error {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		actualVal, exists := actual[key]
		if !exists {
			return &AssertionError{
				Type:     typ,
				Subject:  subject,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("available fields: %s", strings.Join(sortedKeys(actual), ", ")),
			}
		}
		if !valuesEqual(actualVal, expected[key]) {
			return &AssertionError{
				Type:     typ,
				Subject:  subject,
				Expected: fmt.Sprintf("%s = %v", key, expected[key]),
				Actual:   fmt.Sprintf("%s = %v", key, actualVal),
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// valuesEqual compares a view value against a YAML-decoded one. Integers
// compare by value whatever their width; everything else must be deeply
// equal.
func valuesEqual(actual, expected any) bool {
	if a, ok := toInt64(actual); ok {
		e, ok := toInt64(expected)
		return ok && a == e
	}
	return reflect.DeepEqual(actual, expected)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
