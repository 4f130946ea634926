package jira

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/randalmurphal/adfbridge/adf"
)

// WebhookEventType is the webhookEvent field of a delivery.
type WebhookEventType string

// Events that carry rich text.
const (
	WebhookEventIssueCreated   WebhookEventType = "jira:issue_created"
	WebhookEventIssueUpdated   WebhookEventType = "jira:issue_updated"
	WebhookEventIssueDeleted   WebhookEventType = "jira:issue_deleted"
	WebhookEventCommentCreated WebhookEventType = "comment_created"
	WebhookEventCommentUpdated WebhookEventType = "comment_updated"
	WebhookEventCommentDeleted WebhookEventType = "comment_deleted"
)

// MaxWebhookBody caps how much of a delivery ReadWebhook will buffer.
const MaxWebhookBody = 4 << 20

// WebhookSignatureHeaders are checked in order for an HMAC signature.
var WebhookSignatureHeaders = []string{
	"X-Hub-Signature-256",
	"X-Atlassian-Webhook-Signature",
}

// WebhookPayload is a Jira webhook delivery. Issue descriptions and comment
// bodies arrive as ADF; DescriptionMarkdown and CommentMarkdown render them.
type WebhookPayload struct {
	Timestamp      int64            `json:"timestamp"`
	WebhookEvent   WebhookEventType `json:"webhookEvent"`
	IssueEventType string           `json:"issue_event_type_name,omitempty"`
	User           *User            `json:"user,omitempty"`
	Issue          *Issue           `json:"issue,omitempty"`
	Comment        *Comment         `json:"comment,omitempty"`
	Changelog      *Changelog       `json:"changelog,omitempty"`
}

// Changelog lists the field changes of an issue_updated delivery.
type Changelog struct {
	ID    string          `json:"id"`
	Items []ChangelogItem `json:"items"`
}

// ChangelogItem is one field change.
type ChangelogItem struct {
	Field      string `json:"field"`
	FieldType  string `json:"fieldtype"`
	FieldID    string `json:"fieldId,omitempty"`
	From       string `json:"from,omitempty"`
	FromString string `json:"fromString,omitempty"`
	To         string `json:"to,omitempty"`
	ToString   string `json:"toString,omitempty"`
}

// GetFieldChange returns the change for a field, matched case-insensitively,
// or nil.
func (c *Changelog) GetFieldChange(field string) *ChangelogItem {
	if c == nil {
		return nil
	}
	for i := range c.Items {
		if strings.EqualFold(c.Items[i].Field, field) {
			return &c.Items[i]
		}
	}
	return nil
}

// ReadWebhook reads a delivery from r, checks its HMAC signature against
// secret, and parses it. An empty secret skips the signature check.
func ReadWebhook(r *http.Request, secret string) (*WebhookPayload, error) {
	body, readErr := io.ReadAll(io.LimitReader(r.Body, MaxWebhookBody))
	if readErr != nil {
		return nil, fmt.Errorf("read webhook body: %w", readErr)
	}

	if secret != "" && !ValidateWebhookSignature(body, signatureHeader(r.Header), secret) {
		return nil, ErrWebhookInvalidSignature
	}
	return ParseWebhookPayload(body)
}

func signatureHeader(h http.Header) string {
	for _, name := range WebhookSignatureHeaders {
		if sig := h.Get(name); sig != "" {
			return sig
		}
	}
	return ""
}

// ValidateWebhookSignature reports whether signature is the HMAC-SHA256 of
// body under secret. The signature may carry a "sha256=" prefix.
func ValidateWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(want), []byte(strings.TrimPrefix(signature, "sha256=")))
}

// ParseWebhookPayload decodes a delivery body.
func ParseWebhookPayload(body []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWebhookInvalidPayload, err)
	}
	return &payload, nil
}

// HasFieldChange reports whether the changelog names field.
func (p *WebhookPayload) HasFieldChange(field string) bool {
	return p.Changelog.GetFieldChange(field) != nil
}

// IsDescriptionChange reports whether the issue description changed.
func (p *WebhookPayload) IsDescriptionChange() bool {
	return p.HasFieldChange("description")
}

// DescriptionMarkdown renders the issue description, or "" without an issue.
func (p *WebhookPayload) DescriptionMarkdown() string {
	if p.Issue == nil {
		return ""
	}
	return renderRichText(webhookRenderer, p.Issue.Fields.Description)
}

// CommentMarkdown renders the comment body, or "" without a comment.
func (p *WebhookPayload) CommentMarkdown() string {
	if p.Comment == nil {
		return ""
	}
	return renderRichText(webhookRenderer, p.Comment.Body)
}

var webhookRenderer = adf.NewRenderer()
