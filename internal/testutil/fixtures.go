package testutil

import (
	"fmt"

	"github.com/roach88/crease/internal/ir"
)

// Squad builds n players with ids prefix1..prefixN.
func Squad(prefix string, n int) []ir.Player {
	players := make([]ir.Player, n)
	for i := range players {
		id := fmt.Sprintf("%s%d", prefix, i+1)
		players[i] = ir.Player{ID: id, Name: id}
	}
	return players
}

// Config returns a two-team config for format with eleven-player squads:
// team "home" (h1..h11) and team "away" (a1..a11).
func Config(format ir.Format) ir.MatchConfig {
	cfg := ir.MatchConfig{
		Name:      "fixture",
		Format:    format,
		SquadSize: ir.DefaultSquadSize,
		Teams: []ir.Team{
			{ID: "home", Name: "Home XI", Players: Squad("h", ir.DefaultSquadSize)},
			{ID: "away", Name: "Away XI", Players: Squad("a", ir.DefaultSquadSize)},
		},
	}
	if format == ir.FormatTest {
		cfg.Test = &ir.TestConfig{MaxDays: 5, OversPerDay: 90, FollowOnMargin: ir.DefaultFollowOnMargin}
	}
	return cfg
}

// FixedIDGenerator returns the same match id every time.
//
// Unlike engine.FixedGenerator, which returns ids in sequence, this is
// useful when a scenario is run repeatedly and must produce byte-identical
// output.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id, or "test-match" if empty.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-match"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
