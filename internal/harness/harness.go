package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/crease/internal/compiler"
	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/testutil"
)

// DefaultMatchID is used when a scenario does not name its match.
const DefaultMatchID = "test-match"

// StepInterval is how far the wall clock moves after each command.
const StepInterval = 30 * time.Second

// Harness is the test execution engine.
// It runs scenarios with a deterministic wall clock and a fixed match id.
type Harness struct {
	engine *engine.Engine
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs on a fresh engine for isolation. The returned error
// is reserved for scenarios that cannot run at all (an unloadable or
// invalid match definition); failed steps and assertions are reported in
// the result.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenarioConfig(scenario)
	if err != nil {
		return nil, err
	}

	matchID := scenario.MatchID
	if matchID == "" {
		matchID = DefaultMatchID
	}

	clock := testutil.NewDeterministicClock()
	h := &Harness{
		engine: engine.New(matchID, cfg, engine.WithWallClock(clock.Now)),
		clock:  clock,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult()
	h.executeSteps(scenario.Steps, result)

	result.Final = h.engine.Snapshot()
	result.StateHash, err = ir.StateHash(result.Final)
	if err != nil {
		return nil, fmt.Errorf("hash final state: %w", err)
	}

	for _, msg := range EvaluateAssertions(result.Final, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// scenarioConfig resolves the match definition: inline, then file, then
// the fixture squads for the format.
func scenarioConfig(s *Scenario) (ir.MatchConfig, error) {
	var cfg ir.MatchConfig
	switch {
	case s.Match != nil:
		cfg = s.Match.Clone()
		if cfg.SquadSize == 0 {
			cfg.SquadSize = ir.DefaultSquadSize
		}
	case s.MatchFile != "":
		loaded, err := compiler.LoadFile(s.MatchFile)
		if err != nil {
			return ir.MatchConfig{}, fmt.Errorf("load match: %w", err)
		}
		cfg = *loaded
	default:
		return testutil.Config(s.Format), nil
	}

	if verrs := compiler.Validate(&cfg); len(verrs) > 0 {
		return ir.MatchConfig{}, fmt.Errorf("invalid match: %w", verrs[0])
	}
	return cfg, nil
}

// executeSteps runs every step, recording one trace entry per command and
// an error for each step whose outcome differs from ExpectError.
func (h *Harness) executeSteps(steps []Step, result *Result) {
	for i, step := range steps {
		n := step.Repeat
		if n == 0 {
			n = 1
		}
		for r := 0; r < n; r++ {
			state, err := h.engine.Execute(step.Command)
			code := ""
			if err != nil {
				var ce *engine.CommandError
				if errors.As(err, &ce) {
					code = string(ce.Code)
				} else {
					code = err.Error()
				}
			}
			result.AddTrace(i, step.Type, code, state)
			h.clock.Advance(StepInterval)

			if code != step.ExpectError {
				result.AddError(fmt.Sprintf("steps[%d] %s: expected error %q, got %q", i, step.Type, step.ExpectError, code))
			}

			h.logger.Info("step executed",
				"step", i,
				"repeat", r,
				"command", step.Type,
				"error", code,
				"score", state.Score,
				"wickets", state.Wickets,
				"overs", ir.OversString(state.Balls),
			)
		}
	}
}
