package engine

import (
	"github.com/roach88/crease/internal/ir"
)

// timerStep starts the innings timer on the first delivery. Idempotent;
// a zero wall time leaves the timer alone (replay).
func timerStep(s *ir.MatchState, wallMillis int64) {
	if s.Timer.StartedAt == 0 && wallMillis > 0 {
		s.Timer.StartedAt = wallMillis
	}
}

func pauseTimer(t ir.Timer, nowMillis int64) ir.Timer {
	if t.Paused {
		return t
	}
	t.Paused = true
	t.PausedAt = nowMillis
	return t
}

// resumeTimer credits the paused interval as allowance.
func resumeTimer(t ir.Timer, nowMillis int64) ir.Timer {
	if !t.Paused {
		return t
	}
	if nowMillis > t.PausedAt {
		t.AllowanceSeconds += int((nowMillis - t.PausedAt) / 1000)
	}
	t.Paused = false
	t.PausedAt = 0
	return t
}

// SecondsPerOver is the over-rate allocation used for the warning.
const SecondsPerOver = 255

// OverRateReport compares balls bowled with the time used.
type OverRateReport struct {
	ElapsedSeconds int  `json:"elapsed_seconds"` // net of allowances and pauses
	Balls          int  `json:"balls"`
	ExpectedBalls  int  `json:"expected_balls"`
	Behind         bool `json:"behind"`
}

// OverRate computes the over-rate position at nowMillis. A timer that has
// not started reports zero elapsed time.
func OverRate(s ir.MatchState, nowMillis int64) OverRateReport {
	r := OverRateReport{Balls: s.Balls}
	t := s.Timer
	if t.StartedAt == 0 {
		return r
	}
	end := nowMillis
	if t.Paused && t.PausedAt > 0 {
		end = t.PausedAt
	}
	elapsed := int((end-t.StartedAt)/1000) - t.AllowanceSeconds
	if elapsed < 0 {
		elapsed = 0
	}
	r.ElapsedSeconds = elapsed
	r.ExpectedBalls = elapsed * ir.BallsPerOver / SecondsPerOver
	r.Behind = r.Balls < r.ExpectedBalls
	return r
}
