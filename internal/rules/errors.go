package rules

import (
	"errors"
	"fmt"
)

// BlockCode categorizes why a bowler may not bowl the next over.
type BlockCode string

const (
	// CodeQuotaReached means the bowler has bowled the maximum quota.
	CodeQuotaReached BlockCode = "QUOTA_REACHED"

	// CodeBonusOversExhausted means the bowler is at the base quota and
	// every bonus over has already been taken by another bowler.
	CodeBonusOversExhausted BlockCode = "BONUS_OVERS_EXHAUSTED"

	// CodeConsecutiveOver means the bowler finished the previous over.
	CodeConsecutiveOver BlockCode = "CONSECUTIVE_OVER"
)

// BlockedError is returned by CanBowl when a bowler is not available.
type BlockedError struct {
	Code     BlockCode
	BowlerID string
	Bowled   int // overs already bowled this innings
	Limit    int // applicable quota, 0 for the consecutive-over rule
}

// Error implements the error interface.
func (e *BlockedError) Error() string {
	switch e.Code {
	case CodeQuotaReached:
		return fmt.Sprintf("%s: bowler %s has bowled %d of %d overs", e.Code, e.BowlerID, e.Bowled, e.Limit)
	case CodeBonusOversExhausted:
		return fmt.Sprintf("%s: bowler %s is at %d overs and no bonus over remains", e.Code, e.BowlerID, e.Bowled)
	default:
		return fmt.Sprintf("%s: bowler %s bowled the previous over", e.Code, e.BowlerID)
	}
}

// IsBlocked reports whether err is a BlockedError with the given code.
// An empty code matches any BlockedError.
func IsBlocked(err error, code BlockCode) bool {
	var be *BlockedError
	if !errors.As(err, &be) {
		return false
	}
	return code == "" || be.Code == code
}

// IsQuotaReached reports whether err blocks a bowler on the maximum quota.
func IsQuotaReached(err error) bool {
	return IsBlocked(err, CodeQuotaReached)
}
