package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/randalmurphal/adfbridge/adf"
	bridgehttp "github.com/randalmurphal/adfbridge/http"
)

// FieldBody is the field name reported when a page body is rejected.
const FieldBody = "body"

// GetPage fetches a page. With an atlas_doc_format body, Page.Markdown holds
// the rendered Markdown; a storage body is passed through CleanStorage.
// A nil opts uses DefaultFieldOptions.
func (c *Client) GetPage(ctx context.Context, id string, opts *FieldOptions) (*Page, error) {
	if id == "" {
		return nil, ErrPageIDRequired
	}

	query := c.fieldOptions(opts).Query()

	var page Page
	if getErr := c.api.Get(ctx, c.pagePath(id)+"?"+query.Encode(), &page); getErr != nil {
		return nil, notFoundAs(getErr, ErrPageNotFound)
	}
	c.decoratePage(&page)
	return &page, nil
}

func (c *Client) decoratePage(page *Page) {
	page.Markdown = c.renderBody(page.Body)
	if page.Body.Storage != nil {
		page.Body.Storage.Value = CleanStorage(page.Body.Storage.Value)
	}
}

// GetChildren returns an iterator over a page's direct children.
func (c *Client) GetChildren(id string, opts *FieldOptions) *bridgehttp.CursorIterator[Page] {
	query := c.fieldOptions(opts).Query()
	return listIterator(c, c.pagePath(id)+"/children?"+query.Encode(), c.decoratePage)
}

// GetFooterComments returns an iterator over a page's footer comments, with
// bodies rendered to Markdown.
func (c *Client) GetFooterComments(id string) *bridgehttp.CursorIterator[Comment] {
	query := url.Values{"body-format": {RepresentationADF}}
	return listIterator(c, c.pagePath(id)+"/footer-comments?"+query.Encode(), func(comment *Comment) {
		comment.Markdown = c.renderBody(comment.Body)
	})
}

// GetSpaceID resolves a space key to the id the v2 API expects.
func (c *Client) GetSpaceID(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrSpaceKeyRequired
	}

	var spaces listResponse[Space]
	path := apiV2 + "/spaces?" + url.Values{"keys": {key}}.Encode()
	if getErr := c.api.Get(ctx, path, &spaces); getErr != nil {
		return "", fmt.Errorf("look up space %q: %w", key, getErr)
	}
	if len(spaces.Results) == 0 || spaces.Results[0].ID == "" {
		return "", fmt.Errorf("%w: %q", ErrSpaceNotFound, key)
	}
	return spaces.Results[0].ID, nil
}

// CreatePageInput describes a new page. Body may be Markdown text, an ADF
// document (map or *adf.Document), or nil for an empty page.
type CreatePageInput struct {
	SpaceKey string
	Title    string
	ParentID string
	Body     any
}

// CreatePage creates a page with an atlas_doc_format body.
func (c *Client) CreatePage(ctx context.Context, in CreatePageInput) (*Page, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	body, bodyErr := adfBody(in.Body)
	if bodyErr != nil {
		return nil, bodyErr
	}

	spaceID, spaceErr := c.GetSpaceID(ctx, in.SpaceKey)
	if spaceErr != nil {
		return nil, spaceErr
	}

	req := map[string]any{
		"spaceId": spaceID,
		"status":  "current",
		"title":   in.Title,
		"body":    body,
	}
	if in.ParentID != "" {
		req["parentId"] = in.ParentID
	}

	var page Page
	path := apiV2 + "/pages?" + c.fieldOptions(nil).Query().Encode()
	if postErr := c.api.Post(ctx, path, req, &page); postErr != nil {
		return nil, fmt.Errorf("create page: %w", postErr)
	}
	c.decoratePage(&page)
	return &page, nil
}

// UpdatePageInput describes a page update. An empty Title keeps the current
// title.
type UpdatePageInput struct {
	ID             string
	Title          string
	Body           any
	VersionMessage string
}

// UpdatePage replaces a page's body, bumping the version past the current one.
func (c *Client) UpdatePage(ctx context.Context, in UpdatePageInput) (*Page, error) {
	if in.ID == "" {
		return nil, ErrPageIDRequired
	}
	body, bodyErr := adfBody(in.Body)
	if bodyErr != nil {
		return nil, bodyErr
	}

	current, getErr := c.GetPage(ctx, in.ID, &FieldOptions{IncludeVersion: true})
	if getErr != nil {
		return nil, getErr
	}
	if current.Version == nil || current.Version.Number == 0 {
		return nil, ErrVersionMissing
	}

	title := in.Title
	if title == "" {
		title = current.Title
	}

	version := map[string]any{"number": current.Version.Number + 1}
	if in.VersionMessage != "" {
		version["message"] = in.VersionMessage
	}
	req := map[string]any{
		"id":      in.ID,
		"status":  "current",
		"title":   title,
		"body":    body,
		"version": version,
	}

	var page Page
	path := c.pagePath(in.ID) + "?" + c.fieldOptions(nil).Query().Encode()
	if putErr := c.api.Put(ctx, path, req, &page); putErr != nil {
		return nil, notFoundAs(fmt.Errorf("update page: %w", putErr), ErrPageNotFound)
	}
	c.decoratePage(&page)
	return &page, nil
}

func (c *Client) pagePath(id string) string {
	return apiV2 + "/pages/" + url.PathEscape(id)
}

// adfBody converts user input to the v2 body object; the ADF document
// travels as a JSON string.
func adfBody(v any) (BodyValue, error) {
	doc, inputErr := adf.ProcessInput(v, FieldBody)
	if inputErr != nil {
		return BodyValue{}, inputErr
	}
	encoded, marshalErr := json.Marshal(doc)
	if marshalErr != nil {
		return BodyValue{}, fmt.Errorf("encode page body: %w", marshalErr)
	}
	return BodyValue{Representation: RepresentationADF, Value: string(encoded)}, nil
}
