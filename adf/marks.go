package adf

import (
	"fmt"
	"strings"
)

// unsafeSchemes are link schemes dropped during rendering.
var unsafeSchemes = []string{"javascript:", "vbscript:", "data:"}

// ApplyMarks decorates text with marks in order; each mark wraps the result
// of the previous one, so the last mark is outermost. Unknown marks are
// skipped.
func ApplyMarks(text string, marks []Mark) string {
	result := text
	for _, m := range marks {
		switch m.Kind {
		case MarkStrong:
			result = "**" + result + "**"
		case MarkEm:
			result = "*" + result + "*"
		case MarkCode:
			result = "`" + result + "`"
		case MarkStrike:
			result = "~~" + result + "~~"
		case MarkUnderline:
			result = "<u>" + result + "</u>"
		case MarkLink:
			result = formatLink(result, m.Attrs)
		case MarkSubSup:
			if attrStringOr(m.Attrs, "type", "sub") == "sup" {
				result = "<sup>" + result + "</sup>"
			} else {
				result = "<sub>" + result + "</sub>"
			}
		case MarkTextColor:
			if color := attrStringOr(m.Attrs, "color", ""); color != "" {
				result = fmt.Sprintf(`<span style="color:%s">%s</span>`, color, result)
			}
		case MarkBackgroundColor:
			if color := attrStringOr(m.Attrs, "color", ""); color != "" {
				result = fmt.Sprintf(`<mark style="background:%s">%s</mark>`, color, result)
			}
		}
	}
	return result
}

func formatLink(text string, attrs map[string]any) string {
	href := attrStringOr(attrs, "href", "")
	if href == "" || !SafeHref(href) {
		return text
	}
	if title, ok := attrString(attrs, "title"); ok {
		return fmt.Sprintf(`[%s](%s "%s")`, text, href, title)
	}
	return fmt.Sprintf("[%s](%s)", text, href)
}

// SafeHref reports whether href uses a scheme that may be emitted as a link.
func SafeHref(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, scheme := range unsafeSchemes {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return true
}
