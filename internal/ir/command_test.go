package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestCommandDelivery(t *testing.T) {
	c := Command{Type: CmdWicket, WicketKind: DismissalCaught, FielderID: "f1"}
	e := c.Delivery()
	assert.Equal(t, EventDelivery, e.Kind)
	assert.True(t, e.IsWicket)
	assert.Equal(t, ExtraNone, e.ExtraKind)
	assert.False(t, e.CustomCommentary)

	c = Command{Type: CmdDelivery, Runs: 4, Commentary: "through the covers"}
	e = c.Delivery()
	assert.True(t, e.CustomCommentary)
	assert.Equal(t, "through the covers", e.Commentary)

	c = Command{Type: CmdDelivery, BowlerID: "a2"}
	e = c.Delivery()
	assert.Equal(t, "a2", e.BowlerID, "a supplied bowler rides on the delivery")
	assert.Empty(t, e.StrikerID)
}

func TestBallPatchMerge(t *testing.T) {
	six := 6
	e := BallEvent{Timestamp: 2, Runs: 1, StrikerID: "a", Commentary: "1 run"}
	got := BallPatch{Runs: &six}.Merge(e)
	assert.Equal(t, 6, got.Runs)
	assert.Equal(t, "a", got.StrikerID)
	assert.Equal(t, int64(2), got.Timestamp)
	assert.False(t, got.CustomCommentary)

	no := false
	w := BallEvent{IsWicket: true, WicketKind: DismissalBowled, DismissedID: "a"}
	got = BallPatch{IsWicket: &no}.Merge(w)
	assert.False(t, got.IsWicket)
	assert.Empty(t, got.WicketKind)
	assert.Empty(t, got.DismissedID)

	text := "edge, dropped"
	got = BallPatch{Commentary: &text}.Merge(e)
	assert.True(t, got.CustomCommentary)
	empty := ""
	got = BallPatch{Commentary: &empty}.Merge(got)
	assert.False(t, got.CustomCommentary)
}

func TestCommandYAML(t *testing.T) {
	src := `
type: edit
timestamp: 4
patch:
  runs: 6
  extra_kind: wide
`
	var c Command
	assert.NoError(t, yaml.Unmarshal([]byte(src), &c))
	assert.Equal(t, CmdEdit, c.Type)
	assert.Equal(t, int64(4), c.Timestamp)
	if assert.NotNil(t, c.Patch) && assert.NotNil(t, c.Patch.Runs) {
		assert.Equal(t, 6, *c.Patch.Runs)
		assert.Equal(t, ExtraWide, *c.Patch.ExtraKind)
	}
}

func TestOversString(t *testing.T) {
	assert.Equal(t, "0.0", OversString(0))
	assert.Equal(t, "0.5", OversString(5))
	assert.Equal(t, "1.0", OversString(6))
	assert.Equal(t, "12.3", OversString(75))
	assert.Equal(t, "0.0", OversString(-3))
}

func TestOverIndex(t *testing.T) {
	tests := []struct{ after, over, ball int }{
		{1, 0, 1},
		{5, 0, 5},
		{6, 0, 6},
		{7, 1, 1},
		{12, 1, 6},
	}
	for _, tt := range tests {
		over, ball := OverIndex(tt.after)
		assert.Equal(t, tt.over, over, "after=%d", tt.after)
		assert.Equal(t, tt.ball, ball, "after=%d", tt.after)
	}
}
