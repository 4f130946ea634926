package jira

import (
	"errors"

	bridgehttp "github.com/randalmurphal/adfbridge/http"
)

// Configuration errors.
var (
	ErrConfigURLRequired      = errors.New("jira url is required")
	ErrConfigAuthTypeRequired = errors.New("jira auth type is required")
	ErrConfigAuthTypeInvalid  = errors.New("jira auth type must be api_token or oauth2")
	ErrConfigAPITokenAuth     = errors.New("api_token auth requires email and token")
	ErrConfigOAuth2Auth       = errors.New("oauth2 auth requires an access token or refresh token")
	ErrConfigOAuth2Refresh    = errors.New("oauth2 refresh requires client_id and client_secret")
	ErrConfigMaxDepthInvalid  = errors.New("max_depth must not be negative")
)

// Issue errors.
var (
	ErrIssueNotFound    = errors.New("jira issue not found")
	ErrIssueKeyRequired = errors.New("issue key is required")
	ErrIssueKeyInvalid  = errors.New("invalid issue key format")
	ErrProjectRequired  = errors.New("project key is required")
	ErrSummaryRequired  = errors.New("summary is required")
)

// Transition errors.
var (
	ErrTransitionNotFound   = errors.New("transition not found for issue")
	ErrTransitionIDRequired = errors.New("transition id is required")
)

// Comment errors.
var (
	ErrCommentNotFound   = errors.New("comment not found")
	ErrCommentIDRequired = errors.New("comment id is required")
)

// Attachment errors.
var (
	ErrAttachmentIDRequired = errors.New("attachment id is required")
	ErrAttachmentNoContent  = errors.New("attachment metadata has no content url")
)

// Webhook errors.
var (
	ErrWebhookInvalidSignature = errors.New("invalid webhook signature")
	ErrWebhookInvalidPayload   = errors.New("invalid webhook payload")
	ErrWebhookInvalidToken     = errors.New("invalid connect jwt")
	ErrWebhookQSHMismatch      = errors.New("connect jwt query hash does not match request")
)

// notFoundAs maps a 404 from the shared client onto a domain sentinel while
// keeping the API error in the chain.
func notFoundAs(err, sentinel error) error {
	if err != nil && bridgehttp.IsNotFound(err) {
		return errors.Join(sentinel, err)
	}
	return err
}

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return bridgehttp.IsNotFound(err) || errors.Is(err, ErrIssueNotFound) ||
		errors.Is(err, ErrCommentNotFound)
}

// IsUnauthorized reports whether the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return bridgehttp.IsUnauthorized(err)
}

// IsForbidden reports whether the error indicates permission was denied.
func IsForbidden(err error) bool {
	return bridgehttp.IsForbidden(err)
}

// IsRateLimited reports whether the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return bridgehttp.IsRateLimited(err)
}

// IsRetryable reports whether the error is transient and should be retried.
func IsRetryable(err error) bool {
	return bridgehttp.IsRetryable(err)
}
