package jira

import (
	"context"
	"fmt"

	"github.com/randalmurphal/adfbridge/adf"
)

// GetComments retrieves an issue's comments as views.
func (c *Client) GetComments(ctx context.Context, key string, opts ViewOptions) ([]CommentView, error) {
	if keyErr := checkIssueKey(key); keyErr != nil {
		return nil, keyErr
	}

	var result CommentsResponse
	if getErr := c.api.Get(ctx, apiBase+"/issue/"+key+"/comment", &result); getErr != nil {
		return nil, notFoundAs(getErr, ErrIssueNotFound)
	}

	views := make([]CommentView, 0, len(result.Comments))
	for i := range result.Comments {
		views = append(views, c.commentView(&result.Comments[i], opts))
	}
	return views, nil
}

func (c *Client) commentView(comment *Comment, opts ViewOptions) CommentView {
	view := CommentView{
		ID:      comment.ID,
		Author:  displayName(comment.Author),
		Created: comment.Created,
		Updated: comment.Updated,
	}
	if opts.AsMarkdown {
		view.Body = c.renderField(comment.Body)
	} else {
		view.BodyADF = comment.Body
	}
	return view
}

// AddComment adds a comment to an issue. body may be Markdown text, an ADF
// document, or nil.
func (c *Client) AddComment(ctx context.Context, key string, body any) (*Comment, error) {
	if keyErr := checkIssueKey(key); keyErr != nil {
		return nil, keyErr
	}

	doc, inputErr := adf.ProcessCommentInput(body)
	if inputErr != nil {
		return nil, inputErr
	}

	var comment Comment
	path := ApplyFieldFiltering(apiBase + "/issue/" + key + "/comment")
	if postErr := c.api.Post(ctx, path, map[string]any{"body": doc}, &comment); postErr != nil {
		return nil, notFoundAs(postErr, ErrIssueNotFound)
	}
	return &comment, nil
}

// UpdateComment replaces a comment's body.
func (c *Client) UpdateComment(ctx context.Context, key, commentID string, body any) (*Comment, error) {
	if keyErr := checkIssueKey(key); keyErr != nil {
		return nil, keyErr
	}
	if commentID == "" {
		return nil, ErrCommentIDRequired
	}

	doc, inputErr := adf.ProcessCommentInput(body)
	if inputErr != nil {
		return nil, inputErr
	}

	var comment Comment
	path := ApplyFieldFiltering(fmt.Sprintf("%s/issue/%s/comment/%s", apiBase, key, commentID))
	if putErr := c.api.Put(ctx, path, map[string]any{"body": doc}, &comment); putErr != nil {
		return nil, notFoundAs(putErr, ErrCommentNotFound)
	}
	return &comment, nil
}
