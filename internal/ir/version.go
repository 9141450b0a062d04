package ir

// Version constants for the state schema and engine.
const (
	// SchemaVersion is the MatchState schema version.
	SchemaVersion = "1"

	// EngineVersion is the crease engine version.
	EngineVersion = "0.1.0"
)
