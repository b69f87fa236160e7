package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError    = "error"
	FieldPath     = "path"
	FieldLanguage = "language"
	FieldDocument = "document"
	FieldEditor   = "editor"

	// Parse fields.
	FieldBytes       = "bytes"
	FieldLines       = "lines"
	FieldScopes      = "scopes"
	FieldDecorations = "decorations"
	FieldRegions     = "regions"
	FieldElapsed     = "elapsed"
	FieldFingerprint = "fingerprint"

	// Cache fields.
	FieldCache     = "cache"
	FieldEntries   = "entries"
	FieldEvicted   = "evicted"
	FieldSizeBytes = "size_bytes"
	FieldTier      = "tier"

	// Configuration fields.
	FieldMode   = "mode"
	FieldConfig = "config"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
