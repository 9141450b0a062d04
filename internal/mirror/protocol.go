package mirror

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/roach88/crease/internal/ir"
)

// FrameType tags a mirror message.
type FrameType string

const (
	// FrameSnapshot carries the state after one accepted command.
	FrameSnapshot FrameType = "snapshot"
	// FrameReplay is the cached newest snapshot sent to a spectator on connect.
	FrameReplay FrameType = "replay"
)

// TeamLine is the headline score of one side.
type TeamLine struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Wickets int    `json:"wickets"`
	Overs   string `json:"overs,omitempty"`
	Batting bool   `json:"batting"`
}

// Frame is the wire format for snapshots sent to spectators, over the
// websocket and over redis.
type Frame struct {
	Type    FrameType      `json:"type"`
	MatchID string         `json:"match_id"`
	Seq     int64          `json:"seq"`
	Command ir.CommandType `json:"command,omitempty"`
	State   ir.MatchState  `json:"state"`
	Teams   []TeamLine     `json:"teams"`
}

// NewFrame builds a snapshot frame. Team lines add every closed innings of
// a side to the live one, which is what a scoreboard shows in a test match.
func NewFrame(seq int64, cmd ir.CommandType, s ir.MatchState) Frame {
	f := Frame{
		Type:    FrameSnapshot,
		MatchID: s.MatchID,
		Seq:     seq,
		Command: cmd,
		State:   s,
	}
	for _, t := range s.Config.Teams {
		line := TeamLine{ID: t.ID, Name: t.Name}
		if line.Name == "" {
			line.Name = t.ID
		}
		for _, r := range s.ClosedFor(t.ID) {
			line.Score += r.Score
			line.Wickets = r.Wickets
			line.Overs = r.Overs
		}
		if t.ID == s.BattingTeamID && s.Innings > 0 && !closed(s, s.Innings) {
			line.Batting = true
			line.Score += s.Score
			line.Wickets = s.Wickets
			line.Overs = ir.OversString(s.Balls)
		}
		f.Teams = append(f.Teams, line)
	}
	return f
}

func closed(s ir.MatchState, innings int) bool {
	_, ok := s.ClosedInningsNumber(innings)
	return ok
}

// MarshalFrame serializes a frame to JSON.
func MarshalFrame(f Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal frame: %w", err)
	}
	return data, nil
}

// UnmarshalFrame parses a JSON frame.
func UnmarshalFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("unmarshal frame: %w", err)
	}
	if f.MatchID == "" {
		return Frame{}, fmt.Errorf("unmarshal frame: missing match_id")
	}
	return f, nil
}

// sequencer hands out per-match frame numbers starting at 1.
type sequencer struct {
	mu   sync.Mutex
	next map[string]int64
}

func (q *sequencer) take(matchID string) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.next == nil {
		q.next = make(map[string]int64)
	}
	q.next[matchID]++
	return q.next[matchID]
}
