package errors

import "errors"

// Common CLI errors with actionable guidance.
var (
	// ErrNotAuthenticated indicates the Atlassian credentials were rejected.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotConfigured indicates credentials or the site are missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrConnectionFailed indicates the site is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrPermissionDenied indicates insufficient permissions.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound indicates the issue, page or comment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates the API rate limit was exhausted after retries.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidInput indicates the document or arguments were rejected
	// before any request was made.
	ErrInvalidInput = errors.New("invalid input")
)

// Exit codes returned by the CLI.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)
