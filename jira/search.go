package jira

import (
	"context"
	"fmt"

	bridgehttp "github.com/randalmurphal/adfbridge/http"
)

// searchPageSize is the page size used by SearchAll.
const searchPageSize = 100

// SearchOptions configures issue search.
type SearchOptions struct {
	// MaxResults bounds a single Search call. Zero means 50.
	MaxResults int

	// Fields overrides the resolved field list.
	Fields []string

	// AsMarkdown renders each issue's description to Markdown in
	// SearchResult.Descriptions.
	AsMarkdown bool
}

// SearchResult is a page of issues.
type SearchResult struct {
	Issues []Issue

	// Descriptions maps issue key to rendered Markdown when AsMarkdown was set.
	Descriptions map[string]string

	NextPageToken string
}

// Search runs one page of a JQL search. The query is scoped by the
// configured project filter.
func (c *Client) Search(ctx context.Context, jql string, opts *SearchOptions) (*SearchResult, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	limit := opts.MaxResults
	if limit <= 0 {
		limit = 50
	}

	page, searchErr := c.searchPage(ctx, c.searchBody(jql, opts, limit), "")
	if searchErr != nil {
		return nil, searchErr
	}
	return c.searchResult(page, opts), nil
}

// SearchAll returns an iterator over every issue matching jql, following
// nextPageToken in pages of 100 with the configured delay between pages.
func (c *Client) SearchAll(jql string, opts *SearchOptions) *bridgehttp.CursorIterator[Issue] {
	if opts == nil {
		opts = &SearchOptions{}
	}
	body := c.searchBody(jql, opts, searchPageSize)

	return bridgehttp.NewCursorIterator(func(ctx context.Context, cursor string) ([]Issue, string, error) {
		page, searchErr := c.searchPage(ctx, body, cursor)
		if searchErr != nil {
			return nil, "", searchErr
		}
		c.logger.Debug("search page", "issues", len(page.Issues), "next", page.NextPageToken != "")
		return page.Issues, page.NextPageToken, nil
	}).WithPageDelay(c.cfg.RateLimit.PageDelay)
}

// Describe renders an issue's description to Markdown.
func (c *Client) Describe(issue *Issue) string {
	return c.renderField(issue.Fields.Description)
}

func (c *Client) searchBody(jql string, opts *SearchOptions, limit int) map[string]any {
	return map[string]any{
		"jql":        ApplyProjectFilter(jql, c.cfg.Search.ProjectsFilter),
		"maxResults": limit,
		"fields":     ResolveSearchFields(opts.Fields, c.cfg.Search, opts.AsMarkdown),
	}
}

func (c *Client) searchPage(ctx context.Context, base map[string]any, token string) (*SearchResponse, error) {
	body := make(map[string]any, len(base)+1)
	for k, v := range base {
		body[k] = v
	}
	if token != "" {
		body["nextPageToken"] = token
	}

	var page SearchResponse
	if postErr := c.api.Post(ctx, apiBase+"/search/jql", body, &page); postErr != nil {
		return nil, fmt.Errorf("search: %w", postErr)
	}
	return &page, nil
}

func (c *Client) searchResult(page *SearchResponse, opts *SearchOptions) *SearchResult {
	result := &SearchResult{Issues: page.Issues, NextPageToken: page.NextPageToken}
	if opts.AsMarkdown {
		result.Descriptions = make(map[string]string, len(page.Issues))
		for i := range page.Issues {
			result.Descriptions[page.Issues[i].Key] = c.Describe(&page.Issues[i])
		}
	}
	return result
}
