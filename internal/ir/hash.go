package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without colliding with old digests.
const (
	DomainState = "crease/state/v1"
	DomainEvent = "crease/event/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash digests the canonical form of a match state. Two states with
// the same hash are structurally identical.
func StateHash(s MatchState) (string, error) {
	canonical, err := MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("StateHash: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// EventHash digests one ball event.
func EventHash(e BallEvent) (string, error) {
	canonical, err := MarshalCanonical(e)
	if err != nil {
		return "", fmt.Errorf("EventHash: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// MustStateHash is like StateHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustStateHash(s MatchState) string {
	h, err := StateHash(s)
	if err != nil {
		panic(err)
	}
	return h
}
