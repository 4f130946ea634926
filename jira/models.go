package jira

import (
	"encoding/json"
	"regexp"
	"time"
)

// TimeFormat is the standard Jira timestamp format.
const TimeFormat = "2006-01-02T15:04:05.000-0700"

// User represents a Jira Cloud user.
type User struct {
	AccountID    string `json:"accountId,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
	DisplayName  string `json:"displayName"`
	Active       bool   `json:"active"`
	TimeZone     string `json:"timeZone,omitempty"`
	Self         string `json:"self,omitempty"`
}

// Project represents a Jira project.
type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Self string `json:"self,omitempty"`
}

// IssueType represents an issue type in Jira.
type IssueType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subtask bool   `json:"subtask"`
}

// Priority represents an issue priority.
type Priority struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Status represents an issue status.
type Status struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	StatusCategory StatusCategory `json:"statusCategory"`
}

// StatusCategory represents a status category.
type StatusCategory struct {
	ID   int    `json:"id"`
	Key  string `json:"key"` // "new", "indeterminate", "done"
	Name string `json:"name"`
}

// Attachment is an issue attachment's metadata.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size"`
	// Content is the download URL.
	Content string `json:"content,omitempty"`
	Author  *User  `json:"author,omitempty"`
	Created string `json:"created,omitempty"`
}

// Issue represents a Jira issue.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`
}

// IssueFields contains the fields of a Jira issue. Description is kept as
// raw JSON so the ADF document can be decoded without losing number types.
type IssueFields struct {
	Summary        string          `json:"summary"`
	Description    json.RawMessage `json:"description,omitempty"`
	Status         *Status         `json:"status,omitempty"`
	Priority       *Priority       `json:"priority,omitempty"`
	IssueType      *IssueType      `json:"issuetype,omitempty"`
	Project        *Project        `json:"project,omitempty"`
	Assignee       *User           `json:"assignee,omitempty"`
	Reporter       *User           `json:"reporter,omitempty"`
	Creator        *User           `json:"creator,omitempty"`
	Labels         []string        `json:"labels,omitempty"`
	Created        string          `json:"created,omitempty"`
	Updated        string          `json:"updated,omitempty"`
	DueDate        string          `json:"duedate,omitempty"`
	ResolutionDate string          `json:"resolutiondate,omitempty"`
	Attachment     []Attachment    `json:"attachment,omitempty"`
	Parent         *Issue          `json:"parent,omitempty"`
}

// CreatedTime parses and returns the Created timestamp.
func (f *IssueFields) CreatedTime() (time.Time, error) {
	return ParseTime(f.Created)
}

// UpdatedTime parses and returns the Updated timestamp.
func (f *IssueFields) UpdatedTime() (time.Time, error) {
	return ParseTime(f.Updated)
}

// Transition represents an available status transition.
type Transition struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	To        *Status `json:"to,omitempty"`
	HasScreen bool    `json:"hasScreen"`
}

// TransitionsResponse represents the response from the transitions endpoint.
type TransitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

// Comment represents a Jira comment. Body is an ADF document.
type Comment struct {
	ID           string          `json:"id"`
	Self         string          `json:"self,omitempty"`
	Author       *User           `json:"author,omitempty"`
	UpdateAuthor *User           `json:"updateAuthor,omitempty"`
	Body         json.RawMessage `json:"body"`
	Created      string          `json:"created"`
	Updated      string          `json:"updated"`
}

// CommentsResponse represents the response from the comments endpoint.
type CommentsResponse struct {
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
	Comments   []Comment `json:"comments"`
}

// SearchResponse is one page from /rest/api/3/search/jql.
type SearchResponse struct {
	Issues        []Issue `json:"issues"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
	IsLast        bool    `json:"isLast"`
}

// CreateIssueResponse represents the response from creating an issue.
type CreateIssueResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// IssueView is the flattened, reader-oriented form of an issue.
type IssueView struct {
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Type     string `json:"type,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Assignee string `json:"assignee,omitempty"`
	Reporter string `json:"reporter,omitempty"`
	Project  string `json:"project,omitempty"`
	Created  string `json:"created,omitempty"`
	Updated  string `json:"updated,omitempty"`

	// Description holds Markdown when the view was built with AsMarkdown;
	// otherwise DescriptionADF holds the document as returned by Jira.
	Description    string          `json:"description,omitempty"`
	DescriptionADF json.RawMessage `json:"descriptionAdf,omitempty"`

	Attachments []AttachmentView `json:"attachments,omitempty"`
	Comments    []CommentView    `json:"comments"`
}

// AttachmentView is an attachment reduced to what a reader needs.
type AttachmentView struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size"`
	Content  string `json:"content,omitempty"`
}

// CommentView is a comment with its author flattened to a display name.
type CommentView struct {
	ID      string          `json:"id"`
	Author  string          `json:"author,omitempty"`
	Body    string          `json:"body,omitempty"`
	BodyADF json.RawMessage `json:"bodyAdf,omitempty"`
	Created string          `json:"created,omitempty"`
	Updated string          `json:"updated,omitempty"`
}

// DownloadedAttachment is the result of DownloadAttachment.
type DownloadedAttachment struct {
	ID       string
	Filename string
	MimeType string
	Data     []byte
}

func displayName(u *User) string {
	if u == nil {
		return ""
	}
	return u.DisplayName
}

// issueKeyRegex validates Jira issue keys (e.g., PROJ-123).
var issueKeyRegex = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-\d+$`)

// ValidateIssueKey validates a Jira issue key format.
func ValidateIssueKey(key string) bool {
	return issueKeyRegex.MatchString(key)
}

func checkIssueKey(key string) error {
	if key == "" {
		return ErrIssueKeyRequired
	}
	if !ValidateIssueKey(key) {
		return ErrIssueKeyInvalid
	}
	return nil
}

// ParseTime parses a Jira timestamp string.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	// Jira format: "2025-01-15T10:30:00.000+0000"
	formats := []string{
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05Z",
		time.RFC3339,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &time.ParseError{Value: s}
}

// FormatTime formats a time.Time as a Jira timestamp string.
func FormatTime(t time.Time) string {
	return t.Format(TimeFormat)
}
