package testmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/ir"
)

func testConfig() ir.MatchConfig {
	return ir.MatchConfig{
		Format: ir.FormatTest,
		Test:   &ir.TestConfig{MaxDays: 5, OversPerDay: 90},
		Teams: []ir.Team{
			{ID: "eng", Name: "England"},
			{ID: "ind", Name: "India"},
		},
	}
}

func closed(n int, team string, score int) ir.InningsRecord {
	return ir.InningsRecord{Innings: n, TeamID: team, Score: score}
}

func TestLead(t *testing.T) {
	s := ir.MatchState{
		Config:        testConfig(),
		Innings:       2,
		BattingTeamID: "ind",
		BowlingTeamID: "eng",
		Score:         120,
		ClosedInnings: []ir.InningsRecord{closed(1, "eng", 350)},
	}
	assert.Equal(t, -230, Lead(s, "ind"))
	assert.Equal(t, 350, Lead(s, "eng"), "bowling side excludes the live score")
}

func TestFollowOn(t *testing.T) {
	tests := []struct {
		name     string
		second   int
		eligible bool
	}{
		{"trail exactly margin", 200, true},
		{"trail one short", 201, false},
		{"large trail", 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ir.MatchState{
				Config:        testConfig(),
				Innings:       2,
				ClosedInnings: []ir.InningsRecord{closed(1, "eng", 400), closed(2, "ind", tt.second)},
			}
			fo := FollowOn(s)
			assert.True(t, fo.Evaluable)
			assert.Equal(t, tt.eligible, fo.Eligible)
			assert.Equal(t, 400-tt.second, fo.Trail)
			assert.Equal(t, "eng", fo.Leader)
		})
	}
}

func TestFollowOn_Margin199(t *testing.T) {
	s := ir.MatchState{
		Config:        testConfig(),
		ClosedInnings: []ir.InningsRecord{closed(1, "eng", 399), closed(2, "ind", 200)},
	}
	assert.Equal(t, 199, FollowOn(s).Trail)
	assert.False(t, FollowOn(s).Eligible)
}

func TestFollowOn_NotEvaluableBeforeSecondInningsCloses(t *testing.T) {
	s := ir.MatchState{
		Config:        testConfig(),
		Innings:       2,
		BattingTeamID: "ind",
		Score:         10,
		ClosedInnings: []ir.InningsRecord{closed(1, "eng", 400)},
	}
	fo := FollowOn(s)
	assert.False(t, fo.Evaluable)
	assert.False(t, fo.Eligible)
}

func TestFollowOn_CustomMargin(t *testing.T) {
	cfg := testConfig()
	cfg.Test.FollowOnMargin = 150
	s := ir.MatchState{
		Config:        cfg,
		ClosedInnings: []ir.InningsRecord{closed(1, "eng", 300), closed(2, "ind", 150)},
	}
	assert.True(t, FollowOn(s).Eligible)
	assert.Equal(t, 150, FollowOn(s).Margin)
}

func TestFourthInningsTarget(t *testing.T) {
	s := ir.MatchState{
		Config:  testConfig(),
		Innings: 2,
	}
	_, _, ok := FourthInningsTarget(s)
	assert.False(t, ok)

	// Normal order: eng 300, ind 250, eng 200 -> ind need 251.
	s = ir.MatchState{
		Config:  testConfig(),
		Innings: 4,
		ClosedInnings: []ir.InningsRecord{
			closed(1, "eng", 300), closed(2, "ind", 250), closed(3, "eng", 200),
		},
	}
	target, chaser, ok := FourthInningsTarget(s)
	require.True(t, ok)
	assert.Equal(t, 251, target)
	assert.Equal(t, "ind", chaser)
}

func TestFourthInningsTarget_FollowOn(t *testing.T) {
	// eng 450, ind 200 and following on 300 -> eng need 51.
	s := ir.MatchState{
		Config:  testConfig(),
		Innings: 4,
		ClosedInnings: []ir.InningsRecord{
			closed(1, "eng", 450), closed(2, "ind", 200), {Innings: 3, TeamID: "ind", Score: 300, FollowOn: true},
		},
	}
	target, chaser, ok := FourthInningsTarget(s)
	require.True(t, ok)
	assert.Equal(t, 51, target)
	assert.Equal(t, "eng", chaser)
}

func TestFourthInningsTarget_LiveThirdInnings(t *testing.T) {
	s := ir.MatchState{
		Config:        testConfig(),
		Innings:       3,
		BattingTeamID: "eng",
		Score:         80,
		ClosedInnings: []ir.InningsRecord{closed(1, "eng", 300), closed(2, "ind", 250)},
	}
	target, _, ok := FourthInningsTarget(s)
	require.True(t, ok)
	assert.Equal(t, 131, target)
}

func TestStatus(t *testing.T) {
	target := 251

	chase := ir.MatchState{
		Config: testConfig(), Innings: 4, Target: &target,
		BattingTeamID: "ind", BowlingTeamID: "eng", Score: 252, Wickets: 4,
	}
	v := Status(chase)
	assert.Equal(t, StateWon, v.State)
	assert.Equal(t, "ind", v.Winner)
	assert.Equal(t, "India won by 6 wickets", v.Summary)

	short := chase
	short.Score = 240
	short.Wickets = 10
	v = Status(short)
	assert.Equal(t, "eng", v.Winner)
	assert.Equal(t, 10, v.Margin)
	assert.Equal(t, "runs", v.MarginUnit)
	assert.Equal(t, "England won by 10 runs", v.Summary)

	drawn := ir.MatchState{Config: testConfig(), Innings: 3, Test: &ir.TestStatus{CurrentDay: 6}}
	assert.Equal(t, StateDrawn, Status(drawn).State)

	live := ir.MatchState{Config: testConfig(), Innings: 3, Test: &ir.TestStatus{CurrentDay: 5}}
	assert.Equal(t, StateInProgress, Status(live).State)
}
