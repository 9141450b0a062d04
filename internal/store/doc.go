// Package store provides SQLite-backed durable storage for scored matches.
//
// Three tables hold a match:
//   - matches: the compiled match definition
//   - snapshots: the state after every accepted command, seq 0 being the
//     empty match; undo pops the newest row
//   - events: the ball log of the newest snapshot, one row per event
//
// # Ordering
//
// Snapshots are ordered by seq and events by their logical timestamp.
// Wall time is never used for ordering, so a replayed store reads back
// identically.
//
// # Encoding
//
// States, commands and events are stored as canonical JSON (see
// ir.MarshalCanonical) next to their domain-separated SHA-256 hash, so a
// replay can verify what it reads without re-encoding.
//
// # Schema
//
// schema.sql always describes the newest layout. Databases written by an
// older build are upgraded on Open by the numbered migrations in store.go,
// tracked in PRAGMA user_version. Connections run in WAL mode with a
// five second busy timeout so readers never block the scoring loop.
package store
