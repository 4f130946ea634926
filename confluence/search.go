package confluence

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	bridgehttp "github.com/randalmurphal/adfbridge/http"
)

// MaxSearchLimit is the largest page size the search endpoint accepts.
const MaxSearchLimit = 250

// SearchOptions configures CQL search.
type SearchOptions struct {
	// Limit bounds a single Search call, capped at MaxSearchLimit. Zero means 25.
	Limit int

	// AllFields expands space, history and metadata as well.
	AllFields bool

	// Expand lists additional expansions.
	Expand []string
}

// Search runs one page of a CQL search scoped by the configured spaces.
func (c *Client) Search(ctx context.Context, cql string, opts *SearchOptions) (*SearchResponse, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 25
	}

	var resp SearchResponse
	if getErr := c.api.Get(ctx, c.searchPath(cql, opts, min(limit, MaxSearchLimit)), &resp); getErr != nil {
		return nil, fmt.Errorf("search: %w", getErr)
	}
	return &resp, nil
}

// SearchAll returns an iterator over every result, fetching pages of
// MaxSearchLimit with the configured delay between them.
func (c *Client) SearchAll(cql string, opts *SearchOptions) *bridgehttp.CursorIterator[SearchResult] {
	if opts == nil {
		opts = &SearchOptions{}
	}
	first := c.searchPath(cql, opts, MaxSearchLimit)

	return bridgehttp.NewCursorIterator(func(ctx context.Context, cursor string) ([]SearchResult, string, error) {
		path := first
		if cursor != "" {
			path = cursor
		}

		var resp SearchResponse
		if getErr := c.api.Get(ctx, path, &resp); getErr != nil {
			return nil, "", fmt.Errorf("search: %w", getErr)
		}
		c.logger.Debug("search page", "results", len(resp.Results), "total", resp.TotalSize)
		return resp.Results, BuildNextURL(c.linksBase(resp.Links), resp.Links.Next), nil
	}).WithPageDelay(c.cfg.RateLimit.PageDelay)
}

func (c *Client) searchPath(cql string, opts *SearchOptions, limit int) string {
	query := url.Values{
		"cql":    {ApplySpaceFilter(cql, c.cfg.SpacesFilter)},
		"limit":  {strconv.Itoa(limit)},
		"expand": {SearchExpand(opts.AllFields, opts.Expand...)},
	}
	return searchAPI + "?" + query.Encode()
}
