package ir

// Version constants for the document schema and the tool.
const (
	// DocumentVersion is the module document schema version.
	DocumentVersion = "1"

	// ToolVersion is the hwir tool version.
	ToolVersion = "0.1.0"
)
