// Package ir provides the canonical data model for crease matches.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the ball log and match
// state the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - The event log is the sole source of truth; every counter on MatchState
//     is re-derivable by folding Events from an empty state
//   - Events are stored oldest-first; latest-first views belong to callers
//   - NO float types in persisted state - canonical JSON rejects floats
//   - Event timestamps come from the engine's logical clock, never wall time
//   - All JSON tags use snake_case
package ir
