package mirror

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/ir"
)

func dialHub(t *testing.T, hub *Hub, query string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	f, err := UnmarshalFrame(data)
	require.NoError(t, err)
	return f
}

func TestHub_BroadcastsNotifications(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "")
	require.Eventually(t, func() bool { return hub.Spectators() == 1 }, time.Second, 5*time.Millisecond)

	state := liveState(t)
	require.NoError(t, hub.Notify(context.Background(), ir.Command{Type: ir.CmdDelivery}, state))
	require.NoError(t, hub.Notify(context.Background(), ir.Command{Type: ir.CmdUndo}, state))

	first := readFrame(t, conn)
	assert.Equal(t, FrameSnapshot, first.Type)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, 5, first.State.Score)

	second := readFrame(t, conn)
	assert.Equal(t, int64(2), second.Seq)
	assert.Equal(t, ir.CmdUndo, second.Command)
}

func TestHub_MatchFilter(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "?match=m2")
	require.Eventually(t, func() bool { return hub.Spectators() == 1 }, time.Second, 5*time.Millisecond)

	other := liveState(t)
	mine := liveState(t)
	mine.MatchID = "m2"

	hub.Broadcast(NewFrame(1, ir.CmdDelivery, other))
	hub.Broadcast(NewFrame(1, ir.CmdDelivery, mine))

	f := readFrame(t, conn)
	assert.Equal(t, "m2", f.MatchID, "frames of other matches are filtered")
}

func TestHub_LateJoinerGetsReplay(t *testing.T) {
	hub := NewHub()
	hub.Broadcast(NewFrame(4, ir.CmdDelivery, liveState(t)))

	conn := dialHub(t, hub, "?match=m1")
	f := readFrame(t, conn)
	assert.Equal(t, FrameReplay, f.Type)
	assert.Equal(t, int64(4), f.Seq)
}

func TestHub_DisconnectRemovesSpectator(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "")
	require.Eventually(t, func() bool { return hub.Spectators() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Spectators() == 0 }, 2*time.Second, 10*time.Millisecond)
}
