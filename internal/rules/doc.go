// Package rules derives format-aware limits from a match state: overs
// allowed, the 1-in-5 bowler quota, per-bowler availability, the wicket
// ceiling and the innings-end trigger.
//
// Every function is a pure read of ir values. Nothing here mutates state;
// the engine consults these rules and the caller decides what to do with a
// BlockedError.
package rules
