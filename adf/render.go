package adf

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// DefaultMaxDepth is the block nesting depth past which rendering stops.
const DefaultMaxDepth = 50

// TruncationMarker replaces content nested deeper than the max depth.
const TruncationMarker = "[Content truncated: max depth exceeded]"

// Renderer converts ADF documents to Markdown. Rendering never fails:
// unknown kinds, missing attributes and excessive nesting degrade to
// placeholders or are dropped. A Renderer holds no per-call state and is
// safe for concurrent use.
type Renderer struct {
	maxDepth int
	logger   *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(r *Renderer) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithLogger sets the logger that receives unsupported-node diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxDepth returns the configured depth limit.
func (r *Renderer) MaxDepth() int {
	return r.maxDepth
}

// ToMarkdown renders a document with the default Renderer.
func ToMarkdown(doc any) string {
	return NewRenderer().Render(doc)
}

// Render converts a document to Markdown. doc may be a *Document, a
// Document, decoded JSON (map[string]any) or raw JSON bytes. Anything
// without an inspectable content array renders to "".
func (r *Renderer) Render(doc any) string {
	switch d := doc.(type) {
	case *Document:
		if d == nil {
			return ""
		}
		return r.RenderNodes(d.Content)
	case Document:
		return r.RenderNodes(d.Content)
	case map[string]any:
		if _, ok := d["content"].([]any); !ok {
			return ""
		}
		return r.RenderNodes(DocumentFromValue(d).Content)
	case json.RawMessage:
		return r.renderJSON(d)
	case []byte:
		return r.renderJSON(d)
	default:
		return ""
	}
}

func (r *Renderer) renderJSON(data []byte) string {
	v, err := DecodeBytes(data)
	if err != nil {
		return ""
	}
	return r.Render(v)
}

// RenderNodes renders top-level blocks, separated by blank lines, and
// normalizes the result.
func (r *Renderer) RenderNodes(nodes []Node) string {
	if len(nodes) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(nodes))
	for i := range nodes {
		if s, ok := r.renderBlock(&nodes[i], 0, 0); ok {
			blocks = append(blocks, s)
		}
	}
	return NormalizeWhitespace(strings.Join(blocks, "\n\n"))
}
