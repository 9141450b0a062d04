// Package scorecard derives display tables from the ball log.
//
// Nothing here is stored. Every card, timeline and ranking is folded fresh
// from ir.MatchState.Events, so a corrected log is reflected everywhere the
// moment the engine replays it. Functions take a state value and never
// modify it.
//
// Cards:
//   - Batting: one row per squad member plus extras and fall of wickets
//   - Bowling: figures per bowler with a per-over grid of raw events
//   - Timeline: ball-level classification for ticker displays
//   - Rates: current and required run rate
//   - MVP: weighted batting, bowling and fielding points
//
// Render writes a plain-text scorecard for the CLI.
package scorecard
