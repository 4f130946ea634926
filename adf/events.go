package adf

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

type eventType uint8

const (
	evStart eventType = iota
	evEnd
	evText
	evCode
	evSoftBreak
	evHardBreak
	evRule
	evTaskMarker
)

type tagType uint8

const (
	tagParagraph tagType = iota
	tagHeading
	tagBlockquote
	tagCodeBlock
	tagList
	tagItem
	tagTable
	tagTableHead
	tagTableRow
	tagTableCell
	tagEmphasis
	tagStrong
	tagStrikethrough
	tagLink
	tagImage
)

type tag struct {
	typ     tagType
	level   int    // heading
	lang    string // fenced code
	ordered bool   // list
	href    string // link, image
	title   string // link, image
}

type event struct {
	typ     eventType
	tag     tag
	text    string
	checked bool
}

// gfm parses CommonMark plus GFM tables, strikethrough and task lists.
// Linkify is left out so bare URLs stay plain text.
var gfm = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
	),
)

// parseEvents flattens the goldmark AST into start/end/text events.
func parseEvents(source []byte) []event {
	doc := gfm.Parser().Parse(text.NewReader(source))
	p := &eventParser{source: source}
	// walk never returns an error.
	_ = ast.Walk(doc, p.walk)
	return p.events
}

type eventParser struct {
	source []byte
	events []event
}

func (p *eventParser) emit(ev event) {
	p.events = append(p.events, ev)
}

func (p *eventParser) wrap(entering bool, t tag) {
	if entering {
		p.emit(event{typ: evStart, tag: t})
	} else {
		p.emit(event{typ: evEnd, tag: t})
	}
}

func (p *eventParser) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Document, *ast.TextBlock:
		// transparent: tight list items hold inline content directly

	case *ast.Paragraph:
		p.wrap(entering, tag{typ: tagParagraph})

	case *ast.Heading:
		p.wrap(entering, tag{typ: tagHeading, level: node.Level})

	case *ast.Blockquote:
		p.wrap(entering, tag{typ: tagBlockquote})

	case *ast.List:
		p.wrap(entering, tag{typ: tagList, ordered: node.IsOrdered()})

	case *ast.ListItem:
		p.wrap(entering, tag{typ: tagItem})

	case *ast.ThematicBreak:
		if entering {
			p.emit(event{typ: evRule})
		}

	case *ast.FencedCodeBlock:
		if entering {
			t := tag{typ: tagCodeBlock}
			if node.Info != nil {
				t.lang = string(node.Language(p.source))
			}
			p.codeBlock(t, node.Lines())
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if entering {
			p.codeBlock(tag{typ: tagCodeBlock}, node.Lines())
		}
		return ast.WalkSkipChildren, nil

	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil

	case *ast.Text:
		if entering {
			p.text(node)
		}

	case *ast.String:
		if entering {
			p.emit(event{typ: evText, text: string(node.Value)})
		}

	case *ast.CodeSpan:
		if entering {
			p.emit(event{typ: evCode, text: p.codeSpan(node)})
		}
		return ast.WalkSkipChildren, nil

	case *ast.Emphasis:
		t := tag{typ: tagEmphasis}
		if node.Level >= 2 {
			t.typ = tagStrong
		}
		p.wrap(entering, t)

	case *ast.Link:
		p.wrap(entering, tag{typ: tagLink, href: string(node.Destination), title: string(node.Title)})

	case *ast.Image:
		p.wrap(entering, tag{typ: tagImage, href: string(node.Destination), title: string(node.Title)})

	case *ast.AutoLink:
		if entering {
			t := tag{typ: tagLink, href: string(node.URL(p.source))}
			p.wrap(true, t)
			p.emit(event{typ: evText, text: string(node.Label(p.source))})
			p.wrap(false, t)
		}
		return ast.WalkSkipChildren, nil

	case *extast.Strikethrough:
		p.wrap(entering, tag{typ: tagStrikethrough})

	case *extast.TaskCheckBox:
		if entering {
			p.emit(event{typ: evTaskMarker, checked: node.IsChecked})
		}

	case *extast.Table:
		p.wrap(entering, tag{typ: tagTable})

	case *extast.TableHeader:
		// A header holds its cells directly; the row is implied.
		if entering {
			p.wrap(true, tag{typ: tagTableHead})
			p.wrap(true, tag{typ: tagTableRow})
		} else {
			p.wrap(false, tag{typ: tagTableRow})
			p.wrap(false, tag{typ: tagTableHead})
		}

	case *extast.TableRow:
		p.wrap(entering, tag{typ: tagTableRow})

	case *extast.TableCell:
		p.wrap(entering, tag{typ: tagTableCell})

	default:
		// footnotes, definition lists and other extensions are not emitted
	}
	return ast.WalkContinue, nil
}

func (p *eventParser) text(node *ast.Text) {
	value := node.Segment.Value(p.source)
	if !node.IsRaw() {
		value = util.UnescapePunctuations(value)
		value = util.ResolveNumericReferences(value)
		value = util.ResolveEntityNames(value)
	}
	if len(value) > 0 {
		p.emit(event{typ: evText, text: string(value)})
	}
	switch {
	case node.HardLineBreak():
		p.emit(event{typ: evHardBreak})
	case node.SoftLineBreak():
		p.emit(event{typ: evSoftBreak})
	}
}

func (p *eventParser) codeSpan(node *ast.CodeSpan) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		var value []byte
		switch child := c.(type) {
		case *ast.Text:
			value = child.Segment.Value(p.source)
		case *ast.String:
			value = child.Value
		default:
			continue
		}
		if bytes.HasSuffix(value, []byte("\n")) {
			buf.Write(value[:len(value)-1])
			buf.WriteByte(' ')
			continue
		}
		buf.Write(value)
	}
	return buf.String()
}

func (p *eventParser) codeBlock(t tag, lines *text.Segments) {
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(p.source))
	}
	code := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	p.wrap(true, t)
	if len(code) > 0 {
		p.emit(event{typ: evText, text: string(code)})
	}
	p.wrap(false, t)
}
