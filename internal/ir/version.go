package ir

// Version constants recorded with every logged generation.
const (
	// IRVersion is the grammar IR schema version.
	IRVersion = "1"

	// EngineVersion is the quill engine version. Replays of records written by
	// a different engine version are reported but still attempted.
	EngineVersion = "0.1.0"
)
