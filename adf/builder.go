package adf

import (
	"slices"
)

// frame is an in-progress container node and the children collected for it.
type frame struct {
	node     Node
	children []Node
}

// builder turns a flat event stream into an ADF node tree.
type builder struct {
	stack       []frame
	content     []Node
	marks       []Mark
	inTableHead bool
}

// Build converts Markdown (CommonMark with GFM tables, strikethrough and
// task lists) into an ADF document. It never fails: empty or malformed input
// yields a valid, possibly empty, document.
func Build(markdown string) *Document {
	b := &builder{content: []Node{}}
	for _, ev := range parseEvents([]byte(markdown)) {
		b.handle(ev)
	}

	doc := NewDocument()
	doc.Content = b.content
	return doc
}

func (b *builder) handle(ev event) {
	switch ev.typ {
	case evStart:
		b.start(ev.tag)
	case evEnd:
		b.end(ev.tag)
	case evText:
		b.appendInline(NewText(ev.text, b.activeMarks()...))
	case evCode:
		marks := append(b.activeMarks(), NewMark(MarkCode, nil))
		b.appendInline(NewText(ev.text, marks...))
	case evSoftBreak:
		b.appendToFrame(NewText(" ", b.activeMarks()...))
	case evHardBreak:
		b.appendToFrame(NewNode(KindHardBreak))
	case evRule:
		b.appendBlock(NewNode(KindRule))
	case evTaskMarker:
		marker := "[ ] "
		if ev.checked {
			marker = "[x] "
		}
		b.appendToFrame(NewText(marker))
	}
}

func (b *builder) start(t tag) {
	switch t.typ {
	case tagParagraph:
		b.push(NewNode(KindParagraph))
	case tagHeading:
		n := NewNode(KindHeading)
		n.Attrs = map[string]any{"level": t.level}
		b.push(n)
	case tagBlockquote:
		b.push(NewNode(KindBlockquote))
	case tagCodeBlock:
		n := NewNode(KindCodeBlock)
		if t.lang != "" {
			n.Attrs = map[string]any{"language": t.lang}
		}
		b.push(n)
	case tagList:
		if t.ordered {
			b.push(NewNode(KindOrderedList))
		} else {
			b.push(NewNode(KindBulletList))
		}
	case tagItem:
		b.push(NewNode(KindListItem))
	case tagTable:
		b.push(NewNode(KindTable))
	case tagTableHead:
		b.inTableHead = true
	case tagTableRow:
		b.push(NewNode(KindTableRow))
	case tagTableCell:
		if b.inTableHead {
			b.push(NewNode(KindTableHeader))
		} else {
			b.push(NewNode(KindTableCell))
		}
	case tagEmphasis:
		b.marks = append(b.marks, NewMark(MarkEm, nil))
	case tagStrong:
		b.marks = append(b.marks, NewMark(MarkStrong, nil))
	case tagStrikethrough:
		b.marks = append(b.marks, NewMark(MarkStrike, nil))
	case tagLink, tagImage:
		// ADF has no inline image, so images become links.
		attrs := map[string]any{"href": t.href}
		if t.title != "" {
			attrs["title"] = t.title
		}
		b.marks = append(b.marks, NewMark(MarkLink, attrs))
	}
}

func (b *builder) end(t tag) {
	switch t.typ {
	case tagTableHead:
		b.inTableHead = false
	case tagEmphasis:
		b.popMark(MarkEm)
	case tagStrong:
		b.popMark(MarkStrong)
	case tagStrikethrough:
		b.popMark(MarkStrike)
	case tagLink, tagImage:
		b.popMark(MarkLink)
	default:
		b.pop(t.typ == tagItem || t.typ == tagTableCell)
	}
}

func (b *builder) push(n Node) {
	b.stack = append(b.stack, frame{node: n})
}

// pop closes the innermost frame and attaches it to its parent, or to the
// document when no parent is open.
func (b *builder) pop(needsBlocks bool) {
	if len(b.stack) == 0 {
		return
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	children := mergeText(top.children)
	if needsBlocks {
		children = wrapInline(children)
	}
	node := top.node
	if len(children) > 0 {
		node.Content = children
	}
	b.appendBlock(node)
}

// appendBlock adds n to the open frame or, at top level, to the document.
func (b *builder) appendBlock(n Node) {
	if len(b.stack) > 0 {
		b.stack[len(b.stack)-1].children = append(b.stack[len(b.stack)-1].children, n)
		return
	}
	b.content = append(b.content, n)
}

// appendInline adds an inline node. Text cannot sit directly under the
// document, so outside any frame it gets its own paragraph.
func (b *builder) appendInline(n Node) {
	if len(b.stack) > 0 {
		b.stack[len(b.stack)-1].children = append(b.stack[len(b.stack)-1].children, n)
		return
	}
	p := NewNode(KindParagraph)
	p.Content = []Node{n}
	b.content = append(b.content, p)
}

// appendToFrame adds n only when a frame is open.
func (b *builder) appendToFrame(n Node) {
	if len(b.stack) > 0 {
		b.stack[len(b.stack)-1].children = append(b.stack[len(b.stack)-1].children, n)
	}
}

func (b *builder) activeMarks() []Mark {
	if len(b.marks) == 0 {
		return nil
	}
	return slices.Clone(b.marks)
}

// popMark removes the most recently pushed mark of the given kind.
func (b *builder) popMark(kind MarkKind) {
	for i := len(b.marks) - 1; i >= 0; i-- {
		if b.marks[i].Kind == kind {
			b.marks = slices.Delete(b.marks, i, i+1)
			return
		}
	}
}

// blockKinds are the node kinds wrapInline leaves as they are.
var blockKinds = map[Kind]bool{
	KindParagraph:   true,
	KindHeading:     true,
	KindBulletList:  true,
	KindOrderedList: true,
	KindCodeBlock:   true,
	KindBlockquote:  true,
	KindRule:        true,
	KindTable:       true,
}

// wrapInline groups runs of inline nodes into paragraphs. List items and
// table cells must have block children.
func wrapInline(children []Node) []Node {
	if len(children) == 0 {
		return children
	}

	var (
		out    []Node
		inline []Node
	)
	flush := func() {
		if len(inline) == 0 {
			return
		}
		p := NewNode(KindParagraph)
		p.Content = inline
		out = append(out, p)
		inline = nil
	}

	for _, child := range children {
		if blockKinds[child.Kind] {
			flush()
			out = append(out, child)
			continue
		}
		inline = append(inline, child)
	}
	flush()
	return out
}

// mergeText joins adjacent text nodes that carry identical marks.
func mergeText(nodes []Node) []Node {
	if len(nodes) < 2 {
		return nodes
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if last := len(out) - 1; last >= 0 && n.Kind == KindText && out[last].Kind == KindText &&
			marksEqual(out[last].Marks, n.Marks) {
			out[last].Text += n.Text
			continue
		}
		out = append(out, n)
	}
	return out
}

func marksEqual(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || a[i].TypeName() != b[i].TypeName() {
			return false
		}
		if !attrsEqual(a[i].Attrs, b[i].Attrs) {
			return false
		}
	}
	return true
}

func attrsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || va != vb {
			return false
		}
	}
	return true
}
