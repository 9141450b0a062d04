package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateHashDeterminism(t *testing.T) {
	s := MatchState{
		MatchID: "m1",
		Score:   7,
		Balls:   2,
		Events: []BallEvent{
			{Timestamp: 1, Kind: EventDelivery, Runs: 4, ExtraKind: ExtraNone, TeamScore: 4},
			{Timestamp: 2, Kind: EventDelivery, Runs: 3, ExtraKind: ExtraNone, TeamScore: 7},
		},
	}

	h1, err := StateHash(s)
	require.NoError(t, err)
	h2, err := StateHash(s.Clone())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestStateHashChangesWithScore(t *testing.T) {
	a := MatchState{MatchID: "m1", Score: 7}
	b := MatchState{MatchID: "m1", Score: 8}
	assert.NotEqual(t, MustStateHash(a), MustStateHash(b))
}

func TestStateHashNilAndEmptyEventsDiffer(t *testing.T) {
	a := MatchState{MatchID: "m1"}
	b := MatchState{MatchID: "m1", Events: []BallEvent{}}
	// nil encodes as null (dropped); empty encodes as [] so they differ.
	assert.NotEqual(t, MustStateHash(a), MustStateHash(b))
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainState, data), hashWithDomain(DomainEvent, data))
}

func TestEventHash(t *testing.T) {
	e := BallEvent{Timestamp: 1, Kind: EventDelivery, Runs: 1}
	h1, err := EventHash(e)
	require.NoError(t, err)
	e.Runs = 2
	h2, err := EventHash(e)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
