// Package engine implements the crease match-state engine.
//
// The engine turns commands into new match states. Its core is the
// delivery pipeline (Apply), a pure function from a state and a partial
// event to the next state with a fully populated event appended. The
// pipeline composes small sub-engines in a fixed order:
//
//  1. marker short-circuit (identity, retirement, bowler change, substitution)
//  2. timer: start the innings clock on the first delivery
//  3. bowler: stamp the live bowler
//  4. over: legality, ball count, score, strike rotation
//  5. batter: clear a dismissed batter, count the wicket
//  6. materialization: over/ball indices, bowler credit, commentary
//
// Engine is the owned container around the pipeline: it holds the live
// state, an undo stack of deep snapshots and the logical Clock that stamps
// every event. Corrections (Edit) replay the whole live innings through the
// same pipeline, so every derived number re-derives from the corrected
// log. Fold recomputes the counters from a log and must always agree with
// the live state.
//
// Timestamps come from Clock, never from wall time; replaying the same
// commands yields the same log. The wall clock only drives the
// informational innings timer.
//
// Loop serializes commands from concurrent sources (the HTTP scorer
// endpoint) into one goroutine and notifies Sinks after each command.
package engine
