package mirror

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/crease/internal/ir"
)

const (
	clientSendBuf = 64
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type spectator struct {
	matchID string // empty follows every match
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
}

func (c *spectator) follows(matchID string) bool {
	return c.matchID == "" || c.matchID == matchID
}

// Hub fans out snapshot frames to connected spectator websockets. New
// spectators first receive the newest frame of the match they follow.
type Hub struct {
	seq sequencer

	mu      sync.Mutex
	clients map[*spectator]struct{}
	latest  map[string][]byte // match id -> newest encoded frame
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*spectator]struct{}),
		latest:  make(map[string][]byte),
	}
}

// Notify implements engine.Sink: every accepted command becomes a frame.
func (h *Hub) Notify(_ context.Context, cmd ir.Command, state ir.MatchState) error {
	h.Broadcast(NewFrame(h.seq.take(state.MatchID), cmd.Type, state))
	return nil
}

// Broadcast serializes f and enqueues it to every spectator following its
// match. Slow spectators drop frames rather than block the caller.
func (h *Hub) Broadcast(f Frame) {
	data, err := MarshalFrame(f)
	if err != nil {
		slog.Warn("mirror: marshal failed", "match_id", f.MatchID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest[f.MatchID] = data
	for c := range h.clients {
		if !c.follows(f.MatchID) {
			continue
		}
		select {
		case c.send <- data:
		default:
			slog.Warn("mirror: dropping frame for slow spectator", "match_id", f.MatchID, "seq", f.Seq)
		}
	}
}

// Spectators returns the number of connected spectators.
func (h *Hub) Spectators() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleWS upgrades a spectator connection. ?match=<id> restricts the
// feed to one match.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("mirror: upgrade failed", "error", err)
		return
	}

	c := &spectator{
		matchID: r.URL.Query().Get("match"),
		conn:    conn,
		send:    make(chan []byte, clientSendBuf),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	for id, data := range h.latest {
		if c.follows(id) {
			replay, err := asReplay(data)
			if err != nil {
				continue
			}
			select {
			case c.send <- replay:
			default:
			}
		}
	}
	h.mu.Unlock()

	slog.Info("mirror: spectator connected", "match_id", c.matchID)

	go h.writePump(c)
	go h.readPump(c)
}

// asReplay re-tags a cached snapshot frame for a late joiner.
func asReplay(data []byte) ([]byte, error) {
	f, err := UnmarshalFrame(data)
	if err != nil {
		return nil, err
	}
	f.Type = FrameReplay
	return MarshalFrame(f)
}

// writePump drains the spectator's send channel. It owns the connection:
// on exit it removes the spectator and closes the socket.
func (h *Hub) writePump(c *spectator) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		h.remove(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Debug("mirror: write failed", "match_id", c.matchID, "error", err)
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive by reading pongs and close frames.
// Spectators send nothing upstream. On exit it signals writePump.
func (h *Hub) readPump(c *spectator) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *spectator) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	slog.Info("mirror: spectator disconnected", "match_id", c.matchID)
}
