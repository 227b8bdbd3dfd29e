package goSession

import "errors"

var (
	// ErrSessionNotFound is an exported constant or variable used by the session manager.
	ErrSessionNotFound = errors.New("session not found")
	// ErrDuplicateSessionID is an exported constant or variable used by the session manager.
	ErrDuplicateSessionID = errors.New("duplicate session id")
	// ErrInvalidSessionInput is an exported constant or variable used by the session manager.
	ErrInvalidSessionInput = errors.New("invalid session input")
	// ErrDatabaseNotConfigured is an exported constant or variable used by the session manager.
	ErrDatabaseNotConfigured = errors.New("database not configured")
	// ErrFetchFailed is an exported constant or variable used by the session manager.
	ErrFetchFailed = errors.New("database fetch failed")
	// ErrCleanupFailed is an exported constant or variable used by the session manager.
	ErrCleanupFailed = errors.New("database cleanup failed")
	// ErrTokenFeatureDisabled is an exported constant or variable used by the session manager.
	ErrTokenFeatureDisabled = errors.New("session token feature disabled")
	// ErrTokenInvalid is an exported constant or variable used by the session manager.
	ErrTokenInvalid = errors.New("invalid session token")
)
