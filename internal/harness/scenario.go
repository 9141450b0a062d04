package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/crease/internal/ir"
)

// Scenario is a scripted match: a definition, the commands to run against
// it and assertions on the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Format selects the fixture squads from testutil.Config. Ignored when
	// Match or MatchFile is set.
	Format ir.Format `yaml:"format,omitempty"`

	// MatchFile is a CUE match definition. Relative paths resolve against
	// the scenario file's directory.
	MatchFile string `yaml:"match_file,omitempty"`

	// Match is an inline match definition. Takes precedence over MatchFile.
	Match *ir.MatchConfig `yaml:"match,omitempty"`

	// MatchID defaults to "test-match".
	MatchID string `yaml:"match_id,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one command plus its expected outcome.
type Step struct {
	ir.Command `yaml:",inline"`

	// Repeat runs the command this many times. Zero means once.
	Repeat int `yaml:"repeat,omitempty"`

	// ExpectError is the engine.CommandError code the command must fail
	// with. Empty means it must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Player is the batter, bowler or ranked player (batter, bowler, can_bowl).
	Player string `yaml:"player,omitempty"`

	// Team selects the side whose lead test_status reports.
	Team string `yaml:"team,omitempty"`

	// Innings selects the scorecard innings. Zero means the live innings.
	Innings int `yaml:"innings,omitempty"`

	// Index selects an event (negative counts from the end) or an MVP rank.
	Index int `yaml:"index,omitempty"`

	// Kind restricts event_count to one event kind.
	Kind ir.EventKind `yaml:"kind,omitempty"`

	// Count is the expected number of events (event_count).
	Count *int `yaml:"count,omitempty"`

	// Code is the expected rules.BlockCode (can_bowl). Empty means allowed.
	Code string `yaml:"code,omitempty"`

	// Expect contains expected field values. Subset match: only the listed
	// fields are compared.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertState      = "state"
	AssertEvent      = "event"
	AssertEventCount = "event_count"
	AssertBatter     = "batter"
	AssertBowler     = "bowler"
	AssertCanBowl    = "can_bowl"
	AssertMVP        = "mvp"
	AssertTestStatus = "test_status"
	AssertReplay     = "replay"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.MatchFile != "" && !filepath.IsAbs(scenario.MatchFile) {
		scenario.MatchFile = filepath.Join(filepath.Dir(path), scenario.MatchFile)
	}
	if scenario.MatchFile != "" && scenario.Match == nil {
		if _, err := os.Stat(scenario.MatchFile); err != nil {
			return nil, fmt.Errorf("invalid scenario: match file not found: %s", scenario.MatchFile)
		}
	}
	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML. Relative match files
// are left unresolved.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Match == nil && s.MatchFile == "" && s.Format == "" {
		return fmt.Errorf("one of format, match_file or match is required")
	}
	if s.Format != "" && !ir.ValidFormats[s.Format] {
		return fmt.Errorf("unknown format %q", s.Format)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Type == "" {
			return fmt.Errorf("steps[%d]: type is required", i)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("steps[%d]: repeat must be non-negative", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertState, AssertEvent, AssertTestStatus:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertEventCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for event_count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertBatter, AssertBowler:
		if a.Player == "" {
			return fmt.Errorf("assertions[%d]: player is required for %s", index, a.Type)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertCanBowl:
		if a.Player == "" {
			return fmt.Errorf("assertions[%d]: player is required for can_bowl", index)
		}
	case AssertMVP:
		if a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must be non-negative for mvp", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for mvp", index)
		}
	case AssertReplay:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
