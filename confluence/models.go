package confluence

import "encoding/json"

// Body representations accepted by the v2 API.
const (
	RepresentationStorage = "storage"
	RepresentationADF     = "atlas_doc_format"
)

// Links are the _links of a v2 or v1 response.
type Links struct {
	Next  string `json:"next,omitempty"`
	Base  string `json:"base,omitempty"`
	WebUI string `json:"webui,omitempty"`
}

// Version is a page or comment version.
type Version struct {
	Number    int    `json:"number"`
	Message   string `json:"message,omitempty"`
	MinorEdit bool   `json:"minorEdit,omitempty"`
	AuthorID  string `json:"authorId,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// BodyValue is one representation of a body.
type BodyValue struct {
	Representation string `json:"representation"`
	Value          string `json:"value"`
}

// Body holds whichever representations were requested.
type Body struct {
	Storage        *BodyValue `json:"storage,omitempty"`
	AtlasDocFormat *BodyValue `json:"atlas_doc_format,omitempty"`
}

// Label is a page label.
type Label struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix,omitempty"`
}

// LabelList is the labels envelope returned with include-labels.
type LabelList struct {
	Results []Label `json:"results"`
}

// Page is a Confluence page as returned by the v2 API.
type Page struct {
	ID         string     `json:"id"`
	Status     string     `json:"status,omitempty"`
	Title      string     `json:"title"`
	SpaceID    string     `json:"spaceId,omitempty"`
	ParentID   string     `json:"parentId,omitempty"`
	ParentType string     `json:"parentType,omitempty"`
	AuthorID   string     `json:"authorId,omitempty"`
	CreatedAt  string     `json:"createdAt,omitempty"`
	Version    *Version   `json:"version,omitempty"`
	Body       Body       `json:"body,omitzero"`
	Labels     *LabelList `json:"labels,omitempty"`
	Links      Links      `json:"_links,omitzero"`

	// Markdown is the atlas_doc_format body rendered by the client.
	Markdown string `json:"markdown,omitempty"`
}

// Comment is a footer comment on a page.
type Comment struct {
	ID       string   `json:"id"`
	Status   string   `json:"status,omitempty"`
	Title    string   `json:"title,omitempty"`
	PageID   string   `json:"pageId,omitempty"`
	AuthorID string   `json:"authorId,omitempty"`
	Version  *Version `json:"version,omitempty"`
	Body     Body     `json:"body,omitzero"`

	Markdown string `json:"markdown,omitempty"`
}

// Space is a Confluence space.
type Space struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// listResponse is the v2 list envelope.
type listResponse[T any] struct {
	Results []T   `json:"results"`
	Links   Links `json:"_links"`
}

// SearchContent is the content an entry of a CQL search refers to.
type SearchContent struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status,omitempty"`
	Title  string `json:"title"`
}

// SearchResult is one CQL search hit.
type SearchResult struct {
	Content      *SearchContent  `json:"content,omitempty"`
	Title        string          `json:"title"`
	Excerpt      string          `json:"excerpt,omitempty"`
	URL          string          `json:"url,omitempty"`
	EntityType   string          `json:"entityType,omitempty"`
	LastModified string          `json:"lastModified,omitempty"`
	Space        json.RawMessage `json:"resultGlobalContainer,omitempty"`
}

// SearchResponse is a page of CQL search results.
type SearchResponse struct {
	Results   []SearchResult `json:"results"`
	Start     int            `json:"start"`
	Limit     int            `json:"limit"`
	Size      int            `json:"size"`
	TotalSize int            `json:"totalSize"`
	Links     Links          `json:"_links"`
}
