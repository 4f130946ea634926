package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/adfbridge/adf"
	"github.com/randalmurphal/adfbridge/config"
	"github.com/randalmurphal/adfbridge/confluence"
	bridgehttp "github.com/randalmurphal/adfbridge/http"
	"github.com/randalmurphal/adfbridge/jira"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
type ErrorMessenger interface {
	AuthErrorMessage() (message, suggestion string)
	NotConfiguredMessage(missing string) (message, suggestion string)
	PermissionDeniedMessage() (message, suggestion string)
	NotFoundMessage(what string) (message, suggestion string)
	RateLimitedMessage() (message, suggestion string)

	// ConnectionErrorMessage, TLSErrorMessage and TimeoutErrorMessage
	// receive the site URL that failed.
	ConnectionErrorMessage(siteURL string) (message, suggestion string)
	TLSErrorMessage(siteURL string) (message, suggestion string)
	TimeoutErrorMessage(siteURL string) (message, suggestion string)

	InvalidInputMessage() (message, suggestion string)
}

// DefaultMessenger provides the adfbridge messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) AuthErrorMessage() (string, string) {
	return "Atlassian rejected the configured credentials.",
		"Check email and api_token, or create a new token at\nhttps://id.atlassian.com/manage-profile/security/api-tokens"
}

func (m DefaultMessenger) NotConfiguredMessage(missing string) (string, string) {
	return fmt.Sprintf("Missing configuration: %s", missing),
		"Set it with 'adfbridge config set <key> <value>' or the ATLASSIAN_* environment variables."
}

func (m DefaultMessenger) PermissionDeniedMessage() (string, string) {
	return "Your account does not have permission for this action.",
		"Ask a site or project administrator for access."
}

func (m DefaultMessenger) NotFoundMessage(what string) (string, string) {
	return fmt.Sprintf("%s was not found.", what),
		"Check the key or ID, and that your account can see it."
}

func (m DefaultMessenger) RateLimitedMessage() (string, string) {
	return "The Atlassian API rate limit was exceeded.",
		"Wait a minute and try again, or lower --workers."
}

func (m DefaultMessenger) ConnectionErrorMessage(siteURL string) (string, string) {
	return fmt.Sprintf("Cannot connect to %s", siteURL),
		"Check that:\n  - The domain is correct\n  - Your network connection is working"
}

func (m DefaultMessenger) TLSErrorMessage(siteURL string) (string, string) {
	return fmt.Sprintf("TLS/certificate error connecting to %s", siteURL),
		"Check for a proxy intercepting HTTPS traffic."
}

func (m DefaultMessenger) TimeoutErrorMessage(siteURL string) (string, string) {
	return fmt.Sprintf("Request to %s timed out", siteURL),
		"Raise request_timeout_ms (max 60000) or try again in a moment."
}

func (m DefaultMessenger) InvalidInputMessage() (string, string) {
	return "The document is not valid input.",
		"Pass Markdown text or an ADF object with type \"doc\", version 1 and a content array."
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
	SiteURL   string
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

// WithSiteURL names the site in connection messages.
func WithSiteURL(url string) Option {
	return func(c *WrapConfig) {
		c.SiteURL = url
	}
}

func getConfig(opts []Option) *WrapConfig {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
		SiteURL:   "the Atlassian site",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Wrap maps errors from the conversion and API layers to CLIErrors.
// Errors it does not recognize are returned unchanged.
func Wrap(err error, opts ...Option) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	cfg := getConfig(opts)
	m := cfg.Messenger

	switch {
	case errors.Is(err, adf.ErrInvalidInput), errors.Is(err, adf.ErrInvalidDocument):
		msg, suggestion := m.InvalidInputMessage()
		return &CLIError{Err: ErrInvalidInput, Message: msg, Details: err.Error(), Suggestion: suggestion}

	case isConfigError(err):
		msg, suggestion := m.NotConfiguredMessage(err.Error())
		return &CLIError{Err: ErrNotConfigured, Message: msg, Suggestion: suggestion}

	case errors.Is(err, bridgehttp.ErrUnauthorized):
		msg, suggestion := m.AuthErrorMessage()
		return &CLIError{Err: ErrNotAuthenticated, Message: msg, Details: err.Error(), Suggestion: suggestion}

	case errors.Is(err, bridgehttp.ErrForbidden):
		msg, suggestion := m.PermissionDeniedMessage()
		return &CLIError{Err: ErrPermissionDenied, Message: msg, Details: err.Error(), Suggestion: suggestion}

	case jira.IsNotFound(err), confluence.IsNotFound(err):
		msg, suggestion := m.NotFoundMessage(notFoundSubject(err))
		return &CLIError{Err: ErrNotFound, Message: msg, Suggestion: suggestion}

	case errors.Is(err, bridgehttp.ErrRateLimited):
		msg, suggestion := m.RateLimitedMessage()
		return &CLIError{Err: ErrRateLimited, Message: msg, Suggestion: suggestion}

	case isInputError(err):
		return &CLIError{Err: ErrInvalidInput, Message: err.Error()}
	}

	return WrapConnectionError(err, cfg.SiteURL, opts...)
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
func WrapConnectionError(err error, siteURL string, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	messenger := getConfig(opts).Messenger

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp") {
		msg, suggestion := messenger.ConnectionErrorMessage(siteURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	if strings.Contains(errStr, "certificate") || strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") {
		msg, suggestion := messenger.TLSErrorMessage(siteURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		msg, suggestion := messenger.TimeoutErrorMessage(siteURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	return err
}

// NewNotConfiguredError creates an error naming a missing setting.
func NewNotConfiguredError(missing string, opts ...Option) error {
	msg, suggestion := getConfig(opts).Messenger.NotConfiguredMessage(missing)
	return &CLIError{
		Err:        ErrNotConfigured,
		Message:    msg,
		Suggestion: suggestion,
	}
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotConfigured):
		return ExitUsage
	default:
		return ExitError
	}
}

func isConfigError(err error) bool {
	for _, target := range []error{
		config.ErrDomainRequired, config.ErrDomainInvalid,
		config.ErrEmailRequired, config.ErrEmailInvalid,
		config.ErrAPITokenRequired, config.ErrAuthTypeInvalid,
		jira.ErrConfigURLRequired, jira.ErrConfigAuthTypeRequired, jira.ErrConfigAuthTypeInvalid,
		jira.ErrConfigAPITokenAuth, jira.ErrConfigOAuth2Auth, jira.ErrConfigOAuth2Refresh,
		confluence.ErrConfigURLRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isInputError(err error) bool {
	for _, target := range []error{
		jira.ErrIssueKeyRequired, jira.ErrIssueKeyInvalid,
		jira.ErrProjectRequired, jira.ErrSummaryRequired,
		confluence.ErrPageIDRequired, confluence.ErrTitleRequired, confluence.ErrSpaceKeyRequired,
		config.ErrMaxDepthInvalid, config.ErrWorkersInvalid, config.ErrTimeoutRange,
		config.ErrUnknownKey, config.ErrNoGitRoot,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func notFoundSubject(err error) string {
	switch {
	case errors.Is(err, jira.ErrIssueNotFound):
		return "The issue"
	case errors.Is(err, jira.ErrCommentNotFound):
		return "The comment"
	case errors.Is(err, confluence.ErrPageNotFound):
		return "The page"
	case errors.Is(err, confluence.ErrSpaceNotFound):
		return "The space"
	default:
		return "The resource"
	}
}
