package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Workspace errors
	ErrWorkspaceNotFound = "WORKSPACE_NOT_FOUND"
	ErrConfigInvalid     = "CONFIG_INVALID"

	// File errors
	ErrFileNotFound         = "FILE_NOT_FOUND"
	ErrFileReadError        = "FILE_READ_ERROR"
	ErrFileWriteError       = "FILE_WRITE_ERROR"
	ErrFileOutsideWorkspace = "FILE_OUTSIDE_WORKSPACE"

	// Index errors
	ErrDatabaseError = "DATABASE_ERROR"
	ErrIndexLocked   = "INDEX_LOCKED"
	ErrPageNotFound  = "PAGE_NOT_FOUND"

	// Input errors
	ErrInvalidInput = "INVALID_INPUT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnInvalidValue    = "INVALID_VALUE"
	WarnSinkRejected    = "ASSERTION_REJECTED"
	WarnNestingTooDeep  = "NESTING_TOO_DEEP"
	WarnRecursionLimit  = "RECURSION_LIMIT"
	WarnDatabaseRebuilt = "DATABASE_REBUILT"
	WarnFileSkipped     = "FILE_SKIPPED"
)
