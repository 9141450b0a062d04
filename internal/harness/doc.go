// Package harness runs scripted matches against the engine and checks the
// outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: two_over_chase
//	description: "What this scenario validates"
//	format: T20                 # fixture squads home (h1..h11) and away (a1..a11)
//	match_file: ../matches/final.cue   # or a CUE definition, relative to the scenario
//	steps:
//	  - type: start_innings
//	    batting_team_id: home
//	    bowling_team_id: away
//	  - type: select_players
//	    striker_id: h1
//	    non_striker_id: h2
//	    bowler_id: a1
//	  - type: delivery
//	    runs: 1
//	    repeat: 6
//	  - type: wicket             # a malformed command
//	    expect_error: MISSING_FIELD
//	assertions:
//	  - type: state
//	    expect: { score: 6, overs: "1.0", striker: h1 }
//	  - type: batter
//	    player: h1
//	    expect: { runs: 3, balls: 3 }
//
// Steps are ir.Command values plus two harness fields: repeat runs the
// command several times and expect_error names the engine.CommandError code
// the step must fail with.
//
// # Assertion Types
//
//   - state: subset match on the live counters and slots
//   - event: subset match on one logged event; negative index counts from the end
//   - event_count: number of logged events, optionally of one kind
//   - batter / bowler: subset match on a scorecard row
//   - can_bowl: the rule engine's verdict for the next over (code "" allows)
//   - mvp: subset match on one ranked entry
//   - test_status: lead, follow-on and result of a multi-day match
//   - replay: replaying the log reproduces the state and its counters
//
// # Golden Files
//
// Each run produces a trace, one entry per executed command. RunWithGolden
// compares the canonical JSON of that trace against {dir}/{name}.golden,
// where dir is the golden directory next to the scenario files (see
// GoldenPath). Regenerate with:
//
//	go test ./internal/harness -update
//
// # Determinism
//
// Every scenario runs on a fresh engine with the deterministic wall clock
// from testutil and a fixed match id, so traces are byte-identical across
// runs.
package harness
