package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/crease/internal/ir"
)

// marshalState converts a MatchState to canonical JSON TEXT and its hash.
func marshalState(s ir.MatchState) (data, hash string, err error) {
	raw, err := ir.MarshalCanonical(s)
	if err != nil {
		return "", "", fmt.Errorf("marshal state: %w", err)
	}
	hash, err = ir.StateHash(s)
	if err != nil {
		return "", "", fmt.Errorf("marshal state: %w", err)
	}
	return string(raw), hash, nil
}

// marshalEvent converts one ball event to canonical JSON TEXT and its hash.
func marshalEvent(e ir.BallEvent) (data, hash string, err error) {
	raw, err := ir.MarshalCanonical(e)
	if err != nil {
		return "", "", fmt.Errorf("marshal event: %w", err)
	}
	hash, err = ir.EventHash(e)
	if err != nil {
		return "", "", fmt.Errorf("marshal event: %w", err)
	}
	return string(raw), hash, nil
}

func marshalCommand(c ir.Command) (string, error) {
	raw, err := ir.MarshalCanonical(c)
	if err != nil {
		return "", fmt.Errorf("marshal command: %w", err)
	}
	return string(raw), nil
}

func marshalConfig(c ir.MatchConfig) (string, error) {
	raw, err := ir.MarshalCanonical(c)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(raw), nil
}

// unmarshalState parses canonical JSON TEXT to MatchState.
func unmarshalState(data string) (ir.MatchState, error) {
	var s ir.MatchState
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return ir.MatchState{}, fmt.Errorf("unmarshal state: %w", err)
	}
	return s, nil
}

func unmarshalEvent(data string) (ir.BallEvent, error) {
	var e ir.BallEvent
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return ir.BallEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return e, nil
}

// unmarshalCommand treats "" and "{}" as the empty command of seq 0.
func unmarshalCommand(data string) (ir.Command, error) {
	var c ir.Command
	if data == "" || data == "{}" {
		return c, nil
	}
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return ir.Command{}, fmt.Errorf("unmarshal command: %w", err)
	}
	return c, nil
}

func unmarshalConfig(data string) (ir.MatchConfig, error) {
	var c ir.MatchConfig
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return ir.MatchConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
