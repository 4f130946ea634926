package adf

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// para returns a paragraph node value holding one text node.
func para(text string) map[string]any {
	return map[string]any{
		"type":    "paragraph",
		"content": []any{map[string]any{"type": "text", "text": text}},
	}
}

func node(typ string, attrs map[string]any, children ...any) map[string]any {
	n := map[string]any{"type": typ}
	if attrs != nil {
		n["attrs"] = attrs
	}
	if children != nil {
		n["content"] = children
	}
	return n
}

func doc(blocks ...any) map[string]any {
	if blocks == nil {
		blocks = []any{}
	}
	return map[string]any{"type": "doc", "version": 1, "content": blocks}
}

func TestToMarkdown_Blocks(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want string
	}{
		{
			name: "paragraphs",
			doc:  doc(para("one"), para("two")),
			want: "one\n\ntwo",
		},
		{
			name: "empty paragraph dropped",
			doc:  doc(node("paragraph", nil), para("x"), node("paragraph", nil, map[string]any{"type": "text", "text": "   "})),
			want: "x",
		},
		{
			name: "heading levels",
			doc: doc(
				node("heading", map[string]any{"level": 2}, map[string]any{"type": "text", "text": "Two"}),
				node("heading", map[string]any{"level": 9}, map[string]any{"type": "text", "text": "Deep"}),
				node("heading", map[string]any{"level": 0}, map[string]any{"type": "text", "text": "Zero"}),
				node("heading", nil, map[string]any{"type": "text", "text": "Default"}),
			),
			want: "## Two\n\n###### Deep\n\n# Zero\n\n# Default",
		},
		{
			name: "bullet list",
			doc:  doc(node("bulletList", nil, node("listItem", nil, para("a")), node("listItem", nil, para("b")))),
			want: "- a\n- b",
		},
		{
			name: "ordered list",
			doc:  doc(node("orderedList", nil, node("listItem", nil, para("a")), node("listItem", nil, para("b")))),
			want: "1. a\n2. b",
		},
		{
			name: "nested list",
			doc: doc(node("bulletList", nil,
				node("listItem", nil, para("a"),
					node("orderedList", nil, node("listItem", nil, para("a1")), node("listItem", nil, para("a2")))),
				node("listItem", nil, para("b")),
			)),
			want: "- a\n  1. a1\n  2. a2\n- b",
		},
		{
			name: "list item with two paragraphs",
			doc:  doc(node("bulletList", nil, node("listItem", nil, para("first"), para("second")))),
			want: "- first second",
		},
		{
			name: "code block",
			doc: doc(node("codeBlock", map[string]any{"language": "python"},
				map[string]any{"type": "text", "text": "print(1)\n"},
				map[string]any{"type": "text", "text": "print(2)", "marks": []any{map[string]any{"type": "strong"}}},
			)),
			want: "```python\nprint(1)\nprint(2)\n```",
		},
		{
			name: "empty code block",
			doc:  doc(node("codeBlock", nil)),
			want: "```\n\n```",
		},
		{
			name: "blockquote",
			doc:  doc(node("blockquote", nil, para("one"), para("two"))),
			want: "> one\n> \n> two",
		},
		{
			name: "rule",
			doc:  doc(para("a"), node("rule", nil), para("b")),
			want: "a\n\n---\n\nb",
		},
		{
			name: "panel",
			doc:  doc(node("panel", map[string]any{"panelType": "warning"}, para("Careful"), para("now"))),
			want: "> **WARNING**: Careful now",
		},
		{
			name: "panel default type",
			doc:  doc(node("panel", nil, para("Note this"))),
			want: "> **INFO**: Note this",
		},
		{
			name: "media single",
			doc:  doc(node("mediaSingle", nil, node("media", map[string]any{"id": "abc-123", "type": "file"}))),
			want: "[Media: abc-123]",
		},
		{
			name: "media group without attrs",
			doc:  doc(node("mediaGroup", nil, node("media", nil))),
			want: "[Media]",
		},
		{
			name: "expand",
			doc:  doc(node("expand", map[string]any{"title": "More"}, para("Hidden"))),
			want: "**More**\n\nHidden",
		},
		{
			name: "nested expand default title",
			doc:  doc(node("nestedExpand", nil, para("Inner"))),
			want: "**Details**\n\nInner",
		},
		{
			name: "task list",
			doc: doc(node("taskList", nil,
				node("taskItem", map[string]any{"state": "DONE"}, map[string]any{"type": "text", "text": "Ship it"}),
				node("taskItem", map[string]any{"state": "TODO"}, map[string]any{"type": "text", "text": "Test it"}),
			)),
			want: "- [x] Ship it\n- [ ] Test it",
		},
		{
			name: "decision list",
			doc: doc(node("decisionList", nil,
				node("decisionItem", nil, map[string]any{"type": "text", "text": "Agreed"}),
				node("decisionItem", map[string]any{"state": "UNDECIDED"}, map[string]any{"type": "text", "text": "Open"}),
			)),
			want: "- [x] Agreed\n- [ ] Open",
		},
		{
			name: "layout",
			doc: doc(node("layoutSection", nil,
				node("layoutColumn", map[string]any{"width": 50}, para("Left")),
				node("layoutColumn", map[string]any{"width": 50}, para("Right")),
			)),
			want: "Left\n\n---\n\nRight",
		},
		{
			name: "embed card",
			doc:  doc(node("embedCard", map[string]any{"url": "https://x.test"})),
			want: "[https://x.test](https://x.test)",
		},
		{
			name: "embed card without url",
			doc:  doc(node("embedCard", map[string]any{"layout": "wide"})),
			want: "[Embedded content]",
		},
		{
			name: "bodied extension",
			doc:  doc(node("bodiedExtension", map[string]any{"extensionType": "com.example"}, para("Body"))),
			want: "Body",
		},
		{
			name: "empty extension",
			doc:  doc(node("bodiedExtension", map[string]any{"extensionType": "com.example"})),
			want: "[Extension: com.example]",
		},
		{
			name: "unknown block",
			doc:  doc(node("fancyBox", nil, para("inside"))),
			want: "<!-- Unsupported: fancyBox -->\ninside",
		},
		{
			name: "unknown empty block dropped",
			doc:  doc(node("fancyBox", nil), para("after")),
			want: "after",
		},
		{
			name: "node without type dropped",
			doc:  doc(map[string]any{"content": []any{para("lost")}}, para("kept")),
			want: "kept",
		},
		{
			name: "empty document",
			doc:  doc(),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMarkdown(tt.doc); got != tt.want {
				t.Errorf("ToMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToMarkdown_Table(t *testing.T) {
	cell := func(typ, text string, attrs map[string]any) map[string]any {
		return node(typ, attrs, para(text))
	}

	tests := []struct {
		name string
		doc  map[string]any
		want string
	}{
		{
			name: "header and one row",
			doc: doc(node("table", nil,
				node("tableRow", nil, cell("tableHeader", "Name", nil), cell("tableHeader", "Value", nil)),
				node("tableRow", nil, cell("tableCell", "a|b", nil), cell("tableCell", "1", nil)),
			)),
			want: "| Name | Value |\n| --- | --- |\n| a\\|b | 1 |",
		},
		{
			name: "colspan",
			doc: doc(node("table", nil,
				node("tableRow", nil, cell("tableHeader", "Wide", map[string]any{"colspan": 2})),
				node("tableRow", nil, cell("tableCell", "x", nil), cell("tableCell", "y", nil)),
			)),
			want: "| Wide |  |\n| --- | --- |\n| x | y |",
		},
		{
			name: "row without content skipped",
			doc: doc(node("table", nil,
				node("tableRow", nil),
				node("tableRow", nil, cell("tableCell", "only", nil)),
			)),
			want: "| only |\n| --- |",
		},
		{
			name: "empty table dropped",
			doc:  doc(node("table", nil), para("after")),
			want: "after",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMarkdown(tt.doc); got != tt.want {
				t.Errorf("ToMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToMarkdown_DepthGuard(t *testing.T) {
	inner := para("bottom")
	for i := 0; i < 60; i++ {
		inner = node("blockquote", nil, inner)
	}

	got := ToMarkdown(doc(inner))
	assert.Contains(t, got, TruncationMarker)
	assert.NotContains(t, got, "bottom")

	// The marker replaces the node at depth 51, under 51 quote levels.
	prefix := strings.Repeat("> ", 51)
	assert.Contains(t, got, prefix+TruncationMarker)
}

func TestToMarkdown_MaxDepthOption(t *testing.T) {
	inner := para("bottom")
	for i := 0; i < 5; i++ {
		inner = node("expand", nil, inner)
	}

	assert.Contains(t, NewRenderer().Render(doc(inner)), "bottom")
	assert.Contains(t, NewRenderer(WithMaxDepth(2)).Render(doc(inner)), TruncationMarker)
}

func TestToMarkdown_Inputs(t *testing.T) {
	raw := `{"type":"doc","version":1,"content":[{"type":"paragraph","content":[{"type":"text","text":"json"}]}]}`

	var typed Document
	require.NoError(t, json.Unmarshal([]byte(raw), &typed))

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"bytes", []byte(raw), "json"},
		{"raw message", json.RawMessage(raw), "json"},
		{"document", typed, "json"},
		{"document pointer", &typed, "json"},
		{"nil document", (*Document)(nil), ""},
		{"no content", map[string]any{"type": "doc", "version": 1}, ""},
		{"content not array", map[string]any{"type": "doc", "content": "x"}, ""},
		{"number", 42, ""},
		{"invalid json", []byte("{"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMarkdown(tt.input); got != tt.want {
				t.Errorf("ToMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"## Title\n\nThe **API** returned `500`.",
		"# Heading\n\nParagraph with *emphasis* and ~~strike~~.",
		"- one\n- two\n- three",
		"1. first\n2. second",
		"- a\n  - b",
		"```go\nfmt.Println(\"hi\")\n```",
		"> quoted",
		"above\n\n---\n\nbelow",
		"| a | b |\n| --- | --- |\n| 1 | 2 |",
		"See [docs](https://example.com/docs).",
		"- [x] done\n- [ ] todo",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if got := ToMarkdown(Build(input)); got != input {
				t.Errorf("ToMarkdown(Build(%q)) = %q", input, got)
			}
		})
	}
}

func TestRenderer_LogsUnsupported(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewRenderer(WithLogger(logger)).Render(doc(node("fancyBox", nil, para("x"))))
	assert.Contains(t, buf.String(), "fancyBox")
}

func TestRenderer_Concurrent(t *testing.T) {
	r := NewRenderer()
	d := Build("# Title\n\n- a\n- b\n\n| x | y |\n| --- | --- |\n| 1 | 2 |")
	want := r.Render(d)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := r.Render(d); got != want {
				t.Errorf("Render() = %q, want %q", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only blanks", "\n\n  \n", ""},
		{"collapse", "a\n\n\n\nb", "a\n\nb"},
		{"whitespace line", "a\n   \n\t\nb", "a\n\nb"},
		{"trim ends", "\n\na\n\n", "a"},
		{"keeps indentation", "- a\n  - b", "- a\n  - b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeWhitespace(tt.in); got != tt.want {
				t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
