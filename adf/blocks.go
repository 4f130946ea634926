package adf

import (
	"fmt"
	"strings"
)

// renderBlock converts one block node to Markdown. The boolean is false when
// the node produces nothing and should be skipped by its parent.
//
// depth counts every container on the way down and drives the truncation
// guard. indent counts list nesting only and drives item indentation.
func (r *Renderer) renderBlock(n *Node, depth, indent int) (string, bool) {
	if depth > r.maxDepth {
		return TruncationMarker, true
	}
	if n.TypeName() == "" {
		return "", false
	}

	switch n.Kind {
	case KindParagraph:
		return r.renderParagraph(n)
	case KindHeading:
		return r.renderHeading(n)
	case KindBulletList, KindOrderedList:
		return r.renderList(n, depth, indent)
	case KindListItem:
		return r.renderListItem(n, depth, indent)
	case KindCodeBlock:
		return renderCodeBlock(n), true
	case KindBlockquote:
		return r.renderBlockquote(n, depth)
	case KindRule:
		return "---", true
	case KindPanel:
		return r.renderPanel(n, depth)
	case KindTable:
		return r.renderTable(n, depth)
	case KindMediaSingle, KindMediaGroup:
		return renderMediaGroup(n)
	case KindExpand, KindNestedExpand:
		return r.renderExpand(n, depth)
	case KindTaskList, KindDecisionList:
		return r.renderChecklist(n, depth)
	case KindTaskItem, KindDecisionItem:
		return r.renderCheckItem(n, depth), true
	case KindLayoutSection:
		return r.renderLayoutSection(n, depth)
	case KindLayoutColumn:
		return r.renderLayoutColumn(n, depth)
	case KindEmbedCard:
		return renderEmbedCard(n)
	case KindBodiedExtension, KindMultiBodiedExtension:
		if body, ok := r.joinChildren(n, depth, "\n\n"); ok {
			return body, true
		}
		return fmt.Sprintf("[Extension: %s]", attrStringOr(n.Attrs, "extensionType", "extension")), true
	case KindExtensionFrame:
		return r.joinChildren(n, depth, "\n\n")
	default:
		return r.renderUnsupported(n, depth)
	}
}

// renderChildren renders each child as a block one level deeper, dropping
// children that produce nothing.
func (r *Renderer) renderChildren(n *Node, depth int) []string {
	parts := make([]string, 0, len(n.Content))
	for i := range n.Content {
		if s, ok := r.renderBlock(&n.Content[i], depth+1, 0); ok {
			parts = append(parts, s)
		}
	}
	return parts
}

func (r *Renderer) joinChildren(n *Node, depth int, sep string) (string, bool) {
	parts := r.renderChildren(n, depth)
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, sep), true
}

func (r *Renderer) renderParagraph(n *Node) (string, bool) {
	if n.Content == nil {
		return "", false
	}
	text := r.renderInlines(n.Content)
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func (r *Renderer) renderHeading(n *Node) (string, bool) {
	if n.Content == nil {
		return "", false
	}
	text := r.renderInlines(n.Content)
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	level, ok := attrInt(n.Attrs, "level")
	if !ok {
		level = 1
	}
	level = min(max(level, 1), 6)
	return strings.Repeat("#", int(level)) + " " + text, true
}

func (r *Renderer) renderList(n *Node, depth, indent int) (string, bool) {
	pad := strings.Repeat("  ", indent)
	ordered := n.Kind == KindOrderedList

	lines := make([]string, 0, len(n.Content))
	for i := range n.Content {
		item, ok := r.renderListItem(&n.Content[i], depth+1, indent)
		if !ok {
			continue
		}
		if ordered {
			lines = append(lines, fmt.Sprintf("%s%d. %s", pad, i+1, item))
		} else {
			lines = append(lines, pad+"- "+item)
		}
	}
	if len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

// renderListItem joins an item's parts with spaces. Nested lists start on
// their own line, indented one level further, with no space before the
// line break.
func (r *Renderer) renderListItem(n *Node, depth, indent int) (string, bool) {
	if depth > r.maxDepth {
		return TruncationMarker, true
	}
	parts := make([]string, 0, len(n.Content))
	for i := range n.Content {
		child := &n.Content[i]
		switch child.Kind {
		case KindParagraph:
			if s, ok := r.renderParagraph(child); ok {
				parts = append(parts, s)
			}
		case KindBulletList, KindOrderedList:
			if s, ok := r.renderBlock(child, depth+1, indent+1); ok {
				parts = append(parts, "\n"+s)
			}
		default:
			if s, ok := r.renderBlock(child, depth+1, 0); ok {
				parts = append(parts, s)
			}
		}
	}
	if len(parts) == 0 {
		return "", false
	}

	var sb strings.Builder
	for i, part := range parts {
		if i > 0 && !strings.HasPrefix(part, "\n") {
			sb.WriteByte(' ')
		}
		sb.WriteString(part)
	}
	return sb.String(), true
}

func renderCodeBlock(n *Node) string {
	var code strings.Builder
	for i := range n.Content {
		code.WriteString(n.Content[i].Text)
	}
	lang := attrStringOr(n.Attrs, "language", "")
	return "```" + lang + "\n" + code.String() + "\n```"
}

func (r *Renderer) renderBlockquote(n *Node, depth int) (string, bool) {
	body, ok := r.joinChildren(n, depth, "\n\n")
	if !ok {
		return "", false
	}
	lines := splitLines(body)
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n"), true
}

func (r *Renderer) renderPanel(n *Node, depth int) (string, bool) {
	body, ok := r.joinChildren(n, depth, " ")
	if !ok {
		return "", false
	}
	panelType := attrStringOr(n.Attrs, "panelType", "info")
	return "> **" + upperCase(panelType) + "**: " + body, true
}

// renderTable renders a pipe table. Merged cells expand into extra empty
// cells so each row keeps its column count; the separator follows the
// first row and takes its width.
func (r *Renderer) renderTable(n *Node, depth int) (string, bool) {
	var lines []string
	for i := range n.Content {
		row := &n.Content[i]
		if row.Content == nil {
			continue
		}

		var cells []string
		for j := range row.Content {
			cell := &row.Content[j]
			body := strings.Join(r.renderChildren(cell, depth+1), " ")
			cells = append(cells, strings.ReplaceAll(body, "|", `\|`))

			span, ok := attrInt(cell.Attrs, "colspan")
			if !ok || span < 1 {
				span = 1
			}
			for k := int64(1); k < span; k++ {
				cells = append(cells, "")
			}
		}

		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if len(lines) == 1 {
			sep := make([]string, len(cells))
			for k := range sep {
				sep[k] = "---"
			}
			lines = append(lines, "| "+strings.Join(sep, " | ")+" |")
		}
	}
	if len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

func renderMediaGroup(n *Node) (string, bool) {
	if n.Content == nil {
		return "", false
	}
	for i := range n.Content {
		if n.Content[i].Attrs != nil {
			return mediaLabel(n.Content[i].Attrs), true
		}
	}
	return "[Media]", true
}

func (r *Renderer) renderExpand(n *Node, depth int) (string, bool) {
	body, ok := r.joinChildren(n, depth, "\n\n")
	if !ok {
		return "", false
	}
	title := attrStringOr(n.Attrs, "title", "Details")
	return "**" + title + "**\n\n" + body, true
}

// renderChecklist renders task and decision lists. Every child is treated
// as an item of the list.
func (r *Renderer) renderChecklist(n *Node, depth int) (string, bool) {
	if len(n.Content) == 0 {
		return "", false
	}
	lines := make([]string, 0, len(n.Content))
	for i := range n.Content {
		if depth+1 > r.maxDepth {
			lines = append(lines, TruncationMarker)
			continue
		}
		lines = append(lines, r.renderCheckItem(&n.Content[i], depth+1))
	}
	return strings.Join(lines, "\n"), true
}

// renderCheckItem renders a task or decision item as a checkbox line. Items
// hold inline content; block children are rendered and joined with spaces.
func (r *Renderer) renderCheckItem(n *Node, depth int) string {
	var done bool
	if n.Kind == KindDecisionItem {
		done = attrStringOr(n.Attrs, "state", "DECIDED") == "DECIDED"
	} else {
		done = attrStringOr(n.Attrs, "state", "TODO") == "DONE"
	}
	box := "- [ ] "
	if done {
		box = "- [x] "
	}

	var (
		parts  []string
		inline []Node
	)
	flush := func() {
		if len(inline) > 0 {
			parts = append(parts, r.renderInlines(inline))
			inline = nil
		}
	}
	for i := range n.Content {
		child := &n.Content[i]
		if child.Kind.IsInline() {
			inline = append(inline, *child)
			continue
		}
		flush()
		if s, ok := r.renderBlock(child, depth+1, 0); ok {
			parts = append(parts, s)
		}
	}
	flush()
	return box + strings.Join(parts, " ")
}

func (r *Renderer) renderLayoutSection(n *Node, depth int) (string, bool) {
	if n.Content == nil {
		return "", false
	}
	columns := make([]string, 0, len(n.Content))
	for i := range n.Content {
		if s, ok := r.renderLayoutColumn(&n.Content[i], depth+1); ok {
			columns = append(columns, s)
		}
	}
	if len(columns) == 0 {
		return "", false
	}
	return strings.Join(columns, "\n\n---\n\n"), true
}

func (r *Renderer) renderLayoutColumn(n *Node, depth int) (string, bool) {
	if depth > r.maxDepth {
		return TruncationMarker, true
	}
	return r.joinChildren(n, depth, "\n\n")
}

func renderEmbedCard(n *Node) (string, bool) {
	if n.Attrs == nil {
		return "", false
	}
	if url := attrStringOr(n.Attrs, "url", ""); url != "" {
		return fmt.Sprintf("[%s](%s)", url, url), true
	}
	return "[Embedded content]", true
}

// renderUnsupported keeps the content of unknown containers behind an HTML
// comment naming the type.
func (r *Renderer) renderUnsupported(n *Node, depth int) (string, bool) {
	r.logger.Debug("unsupported block node", "kind", n.TypeName(), "depth", depth)
	body, ok := r.joinChildren(n, depth, "\n\n")
	if !ok {
		return "", false
	}
	return "<!-- Unsupported: " + n.TypeName() + " -->\n" + body, true
}

// splitLines splits s on newlines. A trailing newline does not produce a
// final empty line and the empty string has no lines.
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
