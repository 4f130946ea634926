package jira

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/randalmurphal/adfbridge/adf"
)

// ViewOptions controls how issues and comments are presented.
type ViewOptions struct {
	// AsMarkdown renders ADF fields to Markdown and injects attachment ids
	// into media references.
	AsMarkdown bool
}

// GetIssue fetches an issue with its attachments and comments and flattens it
// into an IssueView. A failure to fetch comments yields an empty comment list
// rather than an error.
func (c *Client) GetIssue(ctx context.Context, key string, opts ViewOptions) (*IssueView, error) {
	if keyErr := checkIssueKey(key); keyErr != nil {
		return nil, keyErr
	}

	path := apiBase + "/issue/" + key + "?fields=" + strings.Join(issueViewFields, ",")

	var issue Issue
	if getErr := c.api.Get(ctx, path, &issue); getErr != nil {
		return nil, notFoundAs(getErr, ErrIssueNotFound)
	}

	view := c.issueView(&issue, opts)

	comments, commentsErr := c.GetComments(ctx, key, opts)
	if commentsErr != nil {
		c.logger.Warn("fetch comments failed", "issue", key, "error", commentsErr)
		comments = []CommentView{}
	}
	if opts.AsMarkdown {
		for i := range comments {
			comments[i].Body = InjectAttachmentIDs(comments[i].Body, view.Attachments)
		}
	}
	view.Comments = comments

	return view, nil
}

func (c *Client) issueView(issue *Issue, opts ViewOptions) *IssueView {
	f := &issue.Fields
	view := &IssueView{
		Key:      issue.Key,
		Summary:  f.Summary,
		Assignee: displayName(f.Assignee),
		Reporter: displayName(f.Reporter),
		Created:  f.Created,
		Updated:  f.Updated,
		Comments: []CommentView{},
	}
	if f.IssueType != nil {
		view.Type = f.IssueType.Name
	}
	if f.Status != nil {
		view.Status = f.Status.Name
	}
	if f.Priority != nil {
		view.Priority = f.Priority.Name
	}
	if f.Project != nil {
		view.Project = f.Project.Name
	}

	for _, a := range f.Attachment {
		view.Attachments = append(view.Attachments, AttachmentView{
			ID:       a.ID,
			Filename: a.Filename,
			MimeType: a.MimeType,
			Size:     a.Size,
			Content:  a.Content,
		})
	}

	if opts.AsMarkdown {
		view.Description = InjectAttachmentIDs(c.renderField(f.Description), view.Attachments)
	} else if len(f.Description) > 0 && string(f.Description) != "null" {
		view.DescriptionADF = f.Description
	}

	return view
}

// CreateIssueInput describes a new issue. Description may be Markdown text,
// an ADF document (map or *adf.Document), or nil.
type CreateIssueInput struct {
	ProjectKey  string
	Summary     string
	IssueType   string
	Description any
}

// CreateIssue creates an issue, converting the description to ADF.
func (c *Client) CreateIssue(ctx context.Context, in CreateIssueInput) (*CreateIssueResponse, error) {
	if in.ProjectKey == "" {
		return nil, ErrProjectRequired
	}
	if in.Summary == "" {
		return nil, ErrSummaryRequired
	}
	if in.IssueType == "" {
		in.IssueType = "Task"
	}

	description, inputErr := adf.ProcessDescriptionInput(in.Description)
	if inputErr != nil {
		return nil, inputErr
	}

	body := map[string]any{
		"fields": map[string]any{
			"project":     map[string]string{"key": in.ProjectKey},
			"summary":     in.Summary,
			"issuetype":   map[string]string{"name": in.IssueType},
			"description": description,
		},
	}

	var result CreateIssueResponse
	if postErr := c.api.Post(ctx, ApplyFieldFiltering(apiBase+"/issue"), body, &result); postErr != nil {
		return nil, fmt.Errorf("create issue: %w", postErr)
	}
	return &result, nil
}

// UpdateIssue updates an issue's fields. A "description" entry, when present,
// is routed through the description input rules first; other fields are sent
// untouched.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]any) error {
	if keyErr := checkIssueKey(key); keyErr != nil {
		return keyErr
	}

	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	if desc, ok := fields["description"]; ok {
		converted, inputErr := adf.ProcessDescriptionInput(desc)
		if inputErr != nil {
			return inputErr
		}
		out["description"] = converted
	}

	putErr := c.api.Put(ctx, apiBase+"/issue/"+key, map[string]any{"fields": out}, nil)
	return notFoundAs(putErr, ErrIssueNotFound)
}

// GetTransitions gets available transitions for an issue.
func (c *Client) GetTransitions(ctx context.Context, key string) ([]Transition, error) {
	if keyErr := checkIssueKey(key); keyErr != nil {
		return nil, keyErr
	}

	var result TransitionsResponse
	path := ApplyFieldFiltering(apiBase + "/issue/" + key + "/transitions")
	if getErr := c.api.Get(ctx, path, &result); getErr != nil {
		return nil, notFoundAs(getErr, ErrIssueNotFound)
	}
	return result.Transitions, nil
}

// TransitionIssue transitions an issue to a new status.
func (c *Client) TransitionIssue(ctx context.Context, key, transitionID string) error {
	if keyErr := checkIssueKey(key); keyErr != nil {
		return keyErr
	}
	if transitionID == "" {
		return ErrTransitionIDRequired
	}

	body := map[string]any{"transition": map[string]string{"id": transitionID}}
	postErr := c.api.Post(ctx, apiBase+"/issue/"+key+"/transitions", body, nil)
	return notFoundAs(postErr, ErrIssueNotFound)
}

// TransitionIssueByName finds and executes a transition by name.
func (c *Client) TransitionIssueByName(ctx context.Context, key, transitionName string) error {
	transitions, getErr := c.GetTransitions(ctx, key)
	if getErr != nil {
		return getErr
	}

	for _, t := range transitions {
		if strings.EqualFold(t.Name, transitionName) {
			return c.TransitionIssue(ctx, key, t.ID)
		}
	}

	return fmt.Errorf("%w: %q", ErrTransitionNotFound, transitionName)
}

// GetAttachments lists an issue's attachments.
func (c *Client) GetAttachments(ctx context.Context, key string) ([]AttachmentView, error) {
	if keyErr := checkIssueKey(key); keyErr != nil {
		return nil, keyErr
	}

	var issue Issue
	if getErr := c.api.Get(ctx, apiBase+"/issue/"+key+"?fields=attachment", &issue); getErr != nil {
		return nil, notFoundAs(getErr, ErrIssueNotFound)
	}

	views := make([]AttachmentView, 0, len(issue.Fields.Attachment))
	for _, a := range issue.Fields.Attachment {
		views = append(views, AttachmentView{ID: a.ID, Filename: a.Filename, MimeType: a.MimeType, Size: a.Size, Content: a.Content})
	}
	return views, nil
}

// DownloadAttachment fetches an attachment's metadata and then its content.
func (c *Client) DownloadAttachment(ctx context.Context, attachmentID string) (*DownloadedAttachment, error) {
	if attachmentID == "" {
		return nil, ErrAttachmentIDRequired
	}

	var meta Attachment
	if getErr := c.api.Get(ctx, apiBase+"/attachment/"+url.PathEscape(attachmentID), &meta); getErr != nil {
		return nil, fmt.Errorf("attachment metadata: %w", getErr)
	}
	if meta.Content == "" {
		return nil, ErrAttachmentNoContent
	}

	data, rawErr := c.api.GetRaw(ctx, meta.Content)
	if rawErr != nil {
		return nil, fmt.Errorf("download attachment: %w", rawErr)
	}

	filename := meta.Filename
	if filename == "" {
		filename = "attachment"
	}

	return &DownloadedAttachment{
		ID:       attachmentID,
		Filename: filename,
		MimeType: meta.MimeType,
		Data:     data,
	}, nil
}
