package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/mirror"
	"github.com/roach88/crease/internal/store"
	"github.com/roach88/crease/internal/testutil"
)

type fixture struct {
	srv  *httptest.Server
	hub  *mirror.Hub
	st   *store.Store
	loop *engine.Loop
	done chan error
}

// newFixture serves match m1 with the store and hub as loop sinks.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := testutil.NewDeterministicClock()
	eng := engine.New("m1", testutil.Config(ir.FormatT20), engine.WithWallClock(clock.Now))
	require.NoError(t, st.CreateMatch(context.Background(), eng.Snapshot()))

	hub := mirror.NewHub()
	loop := engine.NewLoop(eng, st.Recorder(eng), hub)
	ctx, cancel := context.WithCancel(context.Background())
	f := &fixture{hub: hub, st: st, loop: loop, done: make(chan error, 1)}
	go func() { f.done <- loop.Run(ctx) }()
	t.Cleanup(cancel)

	f.srv = httptest.NewServer(New(st, hub, WithLoop("m1", loop)).Routes())
	t.Cleanup(f.srv.Close)
	return f
}

// stop drains the loop so every sink has run.
func (f *fixture) stop(t *testing.T) {
	t.Helper()
	f.loop.Stop()
	require.NoError(t, <-f.done)
}

func (f *fixture) post(t *testing.T, matchID string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.srv.URL+"/matches/"+matchID+"/commands", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCommands_ScoreThroughLoop(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{
		`{"type":"start_innings","batting_team_id":"home","bowling_team_id":"away"}`,
		`{"type":"select_players","striker_id":"h1","non_striker_id":"h2","bowler_id":"a1"}`,
		`{"type":"delivery","runs":4}`,
	} {
		resp := f.post(t, "m1", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := f.post(t, "m1", `{"type":"delivery","runs":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	frame := decode[mirror.Frame](t, resp)
	assert.Equal(t, ir.CmdDelivery, frame.Command)
	assert.Equal(t, 5, frame.State.Score)
	assert.Equal(t, "h2", frame.State.StrikerID)

	f.stop(t)

	state := decode[ir.MatchState](t, f.get(t, "/matches/m1"))
	assert.Equal(t, 5, state.Score)
	assert.Equal(t, 2, state.Balls)

	snap, err := f.st.Latest(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), snap.Seq)
}

func TestCommands_Rejected(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, "m1", `{"type":"wicket"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[apiError](t, resp)
	assert.Equal(t, "MISSING_FIELD", body.Code)
	assert.Equal(t, "wicket_kind", body.Field)

	resp = f.post(t, "m1", `{"type":"delivery","run":4}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.post(t, "other", `{"type":"delivery"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_SCORED_HERE", decode[apiError](t, resp).Code)
}

func TestCommands_LoopStopped(t *testing.T) {
	f := newFixture(t)
	f.stop(t)

	resp := f.post(t, "m1", `{"type":"delivery"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "LOOP_CLOSED", decode[apiError](t, resp).Code)
}

func TestReadViews(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{
		`{"type":"start_innings","batting_team_id":"home","bowling_team_id":"away"}`,
		`{"type":"select_players","striker_id":"h1","non_striker_id":"h2","bowler_id":"a1"}`,
		`{"type":"delivery","runs":6}`,
		`{"type":"delivery","extra_kind":"wide"}`,
	} {
		require.Equal(t, http.StatusOK, f.post(t, "m1", body).StatusCode)
	}
	f.stop(t)

	resp := f.get(t, "/matches")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	matches := decode[[]store.MatchSummary](t, resp)
	require.Len(t, matches, 1)
	assert.Equal(t, "m1", matches[0].ID)

	card := decode[map[string]json.RawMessage](t, f.get(t, "/matches/m1/card"))
	assert.Contains(t, card, "card")
	assert.Contains(t, card, "rates")

	mvp := decode[[]map[string]any](t, f.get(t, "/matches/m1/mvp"))
	assert.Len(t, mvp, 22)

	timeline := decode[[]map[string]any](t, f.get(t, "/matches/m1/timeline?order=latest"))
	require.Len(t, timeline, 2)
	assert.Equal(t, "extra", timeline[0]["class"])
	assert.Equal(t, "boundary", timeline[1]["class"])

	resp = f.get(t, "/matches/nope/card")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTimeline_Innings(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{
		`{"type":"start_innings","batting_team_id":"home","bowling_team_id":"away"}`,
		`{"type":"select_players","striker_id":"h1","non_striker_id":"h2","bowler_id":"a1"}`,
		`{"type":"delivery","runs":6}`,
		`{"type":"delivery","extra_kind":"wide"}`,
		`{"type":"end_innings","complete":true}`,
		`{"type":"start_innings","batting_team_id":"away","bowling_team_id":"home"}`,
		`{"type":"select_players","striker_id":"a1","non_striker_id":"a2","bowler_id":"h1"}`,
		`{"type":"delivery","runs":4}`,
	} {
		require.Equal(t, http.StatusOK, f.post(t, "m1", body).StatusCode)
	}
	f.stop(t)

	live := decode[[]map[string]any](t, f.get(t, "/matches/m1/timeline"))
	require.Len(t, live, 1, "defaults to the live innings")
	assert.Equal(t, "boundary", live[0]["class"])

	first := decode[[]map[string]any](t, f.get(t, "/matches/m1/timeline?innings=1&order=latest"))
	require.Len(t, first, 2)
	assert.Equal(t, "extra", first[0]["class"])

	for _, bad := range []string{"x", "0", "-1"} {
		resp := f.get(t, "/matches/m1/timeline?innings="+bad)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
		assert.Equal(t, "BAD_REQUEST", decode[apiError](t, resp).Code)
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp := f.get(t, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]any](t, resp)["status"])
}

func TestSpectatorReceivesCommands(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws?match=m1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.hub.Spectators() == 1 }, time.Second, 5*time.Millisecond)

	require.Equal(t, http.StatusOK, f.post(t, "m1", `{"type":"start_innings","batting_team_id":"home","bowling_team_id":"away"}`).StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	frame, err := mirror.UnmarshalFrame(data)
	require.NoError(t, err)
	assert.Equal(t, mirror.FrameSnapshot, frame.Type)
	assert.Equal(t, ir.CmdStartInnings, frame.Command)
	assert.Equal(t, int64(1), frame.Seq)
	assert.Equal(t, 1, frame.State.Innings)
}
