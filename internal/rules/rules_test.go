package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/ir"
)

// overs builds a live first innings in which bowlers[i] bowled over i.
func overs(cfg ir.MatchConfig, bowlers ...string) ir.MatchState {
	s := ir.MatchState{Config: cfg, Innings: 1}
	var ts int64
	for o, b := range bowlers {
		for ball := 1; ball <= 6; ball++ {
			ts++
			s.Events = append(s.Events, ir.BallEvent{
				Timestamp: ts, Kind: ir.EventDelivery, Innings: 1,
				Over: o, Ball: ball, BowlerID: b, ExtraKind: ir.ExtraNone,
			})
			s.Balls++
		}
	}
	return s
}

func TestOversAllowed(t *testing.T) {
	tests := []struct {
		name string
		cfg  ir.MatchConfig
		lost int
		want int
	}{
		{"t20", ir.MatchConfig{Format: ir.FormatT20}, 0, 20},
		{"odi", ir.MatchConfig{Format: ir.FormatODI}, 0, 50},
		{"odi rain", ir.MatchConfig{Format: ir.FormatODI}, 5, 45},
		{"forty", ir.MatchConfig{Format: ir.FormatForty}, 0, 40},
		{"t10", ir.MatchConfig{Format: ir.FormatT10}, 0, 10},
		{"test", ir.MatchConfig{Format: ir.FormatTest}, 0, 90},
		{"test per day", ir.MatchConfig{Format: ir.FormatTest, Test: &ir.TestConfig{OversPerDay: 98}}, 0, 98},
		{"custom", ir.MatchConfig{Format: ir.FormatCustom, Overs: 15}, 0, 15},
		{"floor", ir.MatchConfig{Format: ir.FormatT10}, 30, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OversAllowed(tt.cfg, ir.Adjustments{OversLost: tt.lost}))
		})
	}
}

func TestQuotaFor(t *testing.T) {
	assert.Equal(t, Quota{Base: 4, Remainder: 0, Max: 4}, QuotaFor(20))
	assert.Equal(t, Quota{Base: 10, Remainder: 0, Max: 10}, QuotaFor(50))
	assert.Equal(t, Quota{Base: 4, Remainder: 2, Max: 5}, QuotaFor(22))
	assert.Equal(t, Quota{Base: 0, Remainder: 1, Max: 1}, QuotaFor(1))
}

func TestWicketCeiling(t *testing.T) {
	assert.Equal(t, 10, WicketCeiling(ir.MatchConfig{}))
	assert.Equal(t, 10, WicketCeiling(ir.MatchConfig{SquadSize: 15}))
	assert.Equal(t, 14, WicketCeiling(ir.MatchConfig{SquadSize: 15, FlexibleSquad: true}))
	assert.Equal(t, 6, WicketCeiling(ir.MatchConfig{SquadSize: 7}))
}

func TestCanBowl_TwentyOverQuota(t *testing.T) {
	cfg := ir.MatchConfig{Format: ir.FormatT20}
	s := overs(cfg, "b1", "b2", "b1", "b2", "b1", "b2", "b1", "b2")

	// b1 has bowled 4 overs and b2 finished the last one.
	err := CanBowl(s, "b1")
	require.Error(t, err)
	assert.True(t, IsQuotaReached(err))

	var be *BlockedError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 4, be.Bowled)
	assert.Equal(t, 4, be.Limit)

	assert.NoError(t, CanBowl(s, "b3"))

	// One over earlier b1 was still allowed a fourth.
	s = overs(cfg, "b1", "b2", "b1", "b2", "b1", "b2")
	assert.NoError(t, CanBowl(s, "b1"))
}

func TestCanBowl_BonusOversExhausted(t *testing.T) {
	// 7 overs: base 1, two bowlers may take a second over.
	cfg := ir.MatchConfig{Format: ir.FormatCustom, Overs: 7}
	s := overs(cfg, "b1", "b2", "b1", "b2", "b3", "b4")

	assert.True(t, IsBlocked(CanBowl(s, "b3"), CodeBonusOversExhausted))
	assert.True(t, IsQuotaReached(CanBowl(s, "b1")))
	assert.NoError(t, CanBowl(s, "b5"))
}

func TestCanBowl_ConsecutiveOver(t *testing.T) {
	cfg := ir.MatchConfig{Format: ir.FormatTest}
	s := overs(cfg, "b1")
	assert.True(t, IsBlocked(CanBowl(s, "b1"), CodeConsecutiveOver))
	assert.NoError(t, CanBowl(s, "b2"))

	// Mid-over there is no previous-over bowler to compare.
	s.Events = s.Events[:3]
	s.Balls = 3
	assert.NoError(t, CanBowl(s, "b1"))
}

func TestCanBowl_TestHasNoQuota(t *testing.T) {
	cfg := ir.MatchConfig{Format: ir.FormatTest, Test: &ir.TestConfig{OversPerDay: 10}}
	s := overs(cfg, "b1", "b2", "b1", "b2", "b1", "b2", "b1", "b2")
	assert.NoError(t, CanBowl(s, "b1"))
}

func TestAvailability(t *testing.T) {
	cfg := ir.MatchConfig{Format: ir.FormatT20}
	s := overs(cfg, "b1", "b2", "b1", "b2", "b1", "b2", "b1", "b2")

	rows := Availability(s, []string{"b1", "b3"})
	require.Len(t, rows, 3)
	assert.Equal(t, BowlerAvailability{BowlerID: "b1", OversBowled: 4, Remaining: 0, Blocked: CodeQuotaReached}, rows[0])
	assert.Equal(t, BowlerAvailability{BowlerID: "b3", OversBowled: 0, Remaining: 4}, rows[1])
	assert.Equal(t, "b2", rows[2].BowlerID)
}

func TestInningsEndPriority(t *testing.T) {
	target := 50
	base := ir.MatchState{Config: ir.MatchConfig{Format: ir.FormatT20}}

	s := base
	assert.Equal(t, EndNone, InningsEnd(s))

	s = base
	s.Wickets = 10
	s.Balls = 120
	s.Adjustments.Declared = true
	assert.Equal(t, EndDeclared, InningsEnd(s))

	s.Adjustments.Declared = false
	s.Adjustments.Concluded = true
	assert.Equal(t, EndMatchConcluded, InningsEnd(s))

	s.Adjustments.Concluded = false
	assert.Equal(t, EndAllOut, InningsEnd(s))

	s.Wickets = 3
	assert.Equal(t, EndOversCompleted, InningsEnd(s))

	s.Balls = 30
	s.Target = &target
	s.Score = 50
	assert.Equal(t, EndTargetChased, InningsEnd(s))

	s.Score = 49
	assert.Equal(t, EndNone, InningsEnd(s))
}

func TestInningsEnd_TestIgnoresOvers(t *testing.T) {
	s := ir.MatchState{Config: ir.MatchConfig{Format: ir.FormatTest}, Balls: 1000}
	assert.Equal(t, EndNone, InningsEnd(s))
	assert.Equal(t, -1, BallsRemaining(s))
}

func TestBallsRemaining(t *testing.T) {
	s := ir.MatchState{Config: ir.MatchConfig{Format: ir.FormatT10}, Balls: 45}
	assert.Equal(t, 15, BallsRemaining(s))
	s.Balls = 70
	assert.Equal(t, 0, BallsRemaining(s))
}
