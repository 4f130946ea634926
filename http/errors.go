// Package http provides the REST plumbing shared by the Jira and Confluence clients.
package http

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Sentinel errors for Atlassian API failures.
var (
	// ErrNotFound indicates the issue, page, or comment does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing credentials.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden indicates the account lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrBadRequest indicates the request was rejected as malformed.
	ErrBadRequest = errors.New("bad request")

	// ErrConflict indicates a version conflict, such as a stale page version.
	ErrConflict = errors.New("conflict")

	// ErrServerError indicates a server-side error occurred.
	ErrServerError = errors.New("server error")
)

// APIError is a non-2xx response from an Atlassian REST endpoint.
type APIError struct {
	// Service is "jira" or "confluence".
	Service string

	StatusCode int

	// Message is the primary error text from the response body.
	Message string

	// FieldErrors holds per-field messages (Jira's "errors" object).
	FieldErrors map[string]string

	Endpoint string

	// RequestID correlates the failure with server logs.
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if len(e.FieldErrors) > 0 {
		parts := make([]string, 0, len(e.FieldErrors))
		for _, field := range slices.Sorted(maps.Keys(e.FieldErrors)) {
			parts = append(parts, field+": "+e.FieldErrors[field])
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}

	if e.RequestID != "" {
		return fmt.Sprintf("%s API error (%d) at %s [%s]: %s",
			e.Service, e.StatusCode, e.Endpoint, e.RequestID, msg)
	}
	return fmt.Sprintf("%s API error (%d) at %s: %s",
		e.Service, e.StatusCode, e.Endpoint, msg)
}

// Unwrap returns the sentinel matching the status code.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 429:
		return ErrRateLimited
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// AuthError reports credentials that cannot be used to build a client.
type AuthError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %s", e.Service, e.Reason)
}

// Unwrap returns ErrUnauthorized.
func (e *AuthError) Unwrap() error {
	return ErrUnauthorized
}

// RateLimitError is returned when retries are exhausted on 429 responses.
type RateLimitError struct {
	Service string

	// RetryAfter is the server's last requested wait, if any.
	RetryAfter time.Duration

	// Remaining is the last X-RateLimit-Remaining value seen, or -1.
	Remaining int
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limit exceeded, retry after %s", e.Service, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limit exceeded", e.Service)
}

// Unwrap returns ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden reports whether the error indicates permission was denied.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsRateLimited reports whether the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsRetryable reports whether the error is transient.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError)
}
