package adf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxDateSeconds is roughly the start of year 3000.
const maxDateSeconds = 32503680000

var statusIndicators = map[string]string{
	"green":  "[OK]",
	"yellow": "[WARN]",
	"red":    "[ERR]",
	"blue":   "[INFO]",
	"purple": "[NOTE]",
}

// upperCase upper-cases s. Casers carry state, so one is made per call.
func upperCase(s string) string {
	return cases.Upper(language.Und).String(s)
}

// renderInlines concatenates the rendering of each inline node.
func (r *Renderer) renderInlines(nodes []Node) string {
	var sb strings.Builder
	for i := range nodes {
		sb.WriteString(r.renderInline(&nodes[i]))
	}
	return sb.String()
}

// renderInline converts one inline node to Markdown. Unknown kinds render
// to the empty string.
func (r *Renderer) renderInline(n *Node) string {
	switch n.Kind {
	case KindText:
		return ApplyMarks(n.Text, n.Marks)
	case KindHardBreak:
		return "\n"
	case KindMention:
		name, ok := attrString(n.Attrs, "text")
		if !ok {
			name = attrStringOr(n.Attrs, "id", "user")
		}
		return "@" + strings.TrimLeft(name, "@")
	case KindEmoji:
		if glyph, ok := attrString(n.Attrs, "text"); ok {
			return glyph
		}
		return attrStringOr(n.Attrs, "shortName", "")
	case KindInlineCard:
		url := attrStringOr(n.Attrs, "url", "")
		if url == "" {
			return ""
		}
		return fmt.Sprintf("[%s](%s)", url, url)
	case KindDate:
		return formatDate(n.Attrs["timestamp"])
	case KindStatus:
		text := attrStringOr(n.Attrs, "text", "status")
		indicator, ok := statusIndicators[attrStringOr(n.Attrs, "color", "neutral")]
		if !ok {
			indicator = "[STATUS]"
		}
		return indicator + " " + upperCase(text)
	case KindMediaInline, KindMedia:
		return mediaLabel(n.Attrs)
	case KindPlaceholder:
		return "{" + attrStringOr(n.Attrs, "text", "placeholder") + "}"
	default:
		r.logger.Debug("dropping unsupported inline node", "kind", n.TypeName())
		return ""
	}
}

// mediaLabel renders a media placeholder, preferring alt text over the id.
func mediaLabel(attrs map[string]any) string {
	label, ok := attrString(attrs, "alt")
	if !ok {
		label = attrStringOr(attrs, "id", "media")
	}
	return "[Media: " + label + "]"
}

// formatDate renders an epoch-millisecond timestamp as YYYY-MM-DD (UTC).
// Non-numeric strings are returned unchanged.
func formatDate(v any) string {
	raw, ok := numericString(v)
	if !ok || raw == "" {
		return ""
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return raw
	}

	secs := ms / 1000
	switch {
	case secs < 0:
		return fmt.Sprintf("1970-01-01 (pre-epoch: %d)", secs)
	case secs > maxDateSeconds:
		return fmt.Sprintf("(invalid timestamp: %d)", secs)
	}
	return time.Unix(secs, 0).UTC().Format(time.DateOnly)
}
