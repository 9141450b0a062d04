package harness

import (
	"github.com/roach88/crease/internal/ir"
)

// TraceEvent is the observable outcome of one executed command.
type TraceEvent struct {
	Step    int            `json:"step"` // index into Scenario.Steps
	Command ir.CommandType `json:"command"`
	Error   string         `json:"error,omitempty"` // CommandError code when rejected
	Innings int            `json:"innings"`
	Score   int            `json:"score"`
	Wickets int            `json:"wickets"`
	Overs   string         `json:"overs"`
	Events  int            `json:"events"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every step and assertion matched.
	Pass bool `json:"pass"`

	// Trace holds one entry per executed command, repeats included.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the state after the last step.
	Final ir.MatchState `json:"-"`

	// StateHash is the hash of Final.
	StateHash string `json:"state_hash"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace records the state reached by one command.
func (r *Result) AddTrace(step int, cmd ir.CommandType, code string, s ir.MatchState) {
	r.Trace = append(r.Trace, TraceEvent{
		Step:    step,
		Command: cmd,
		Error:   code,
		Innings: s.Innings,
		Score:   s.Score,
		Wickets: s.Wickets,
		Overs:   ir.OversString(s.Balls),
		Events:  len(s.Events),
	})
}
