package helpers

// ContextKey is a custom type for context keys to avoid string collisions
type ContextKey string

// Mode selects how reports are rendered.
type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// OutputFormat represents different document output formats
type OutputFormat string

const (
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)
