package testutil

// Doc returns a version 1 ADF document holding content.
func Doc(content ...any) map[string]any {
	if content == nil {
		content = []any{}
	}
	return map[string]any{"type": "doc", "version": 1, "content": content}
}

// Paragraph returns a paragraph node of the given inline nodes.
func Paragraph(inline ...any) map[string]any {
	return map[string]any{"type": "paragraph", "content": inline}
}

// Text returns a text node; marks are given by type name.
func Text(s string, marks ...string) map[string]any {
	node := map[string]any{"type": "text", "text": s}
	if len(marks) > 0 {
		list := make([]any, len(marks))
		for i, m := range marks {
			list[i] = map[string]any{"type": m}
		}
		node["marks"] = list
	}
	return node
}

// Heading returns a heading node of the given level.
func Heading(level int, text string) map[string]any {
	return map[string]any{
		"type":    "heading",
		"attrs":   map[string]any{"level": level},
		"content": []any{Text(text)},
	}
}
