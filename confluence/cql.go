package confluence

import (
	"strconv"
	"strings"
)

// ApplySpaceFilter scopes a CQL query to spaces. Queries that already
// mention a space are returned unchanged.
//
//	ApplySpaceFilter("type = page", []string{"ENG", "OPS"})
//	// space IN ("ENG","OPS") AND (type = page)
func ApplySpaceFilter(cql string, spaces []string) string {
	if len(spaces) == 0 {
		return cql
	}

	lower := strings.ToLower(cql)
	if strings.Contains(lower, "space ") ||
		strings.Contains(lower, "space=") ||
		strings.Contains(lower, "space in") {
		return cql
	}

	quoted := make([]string, len(spaces))
	for i, s := range spaces {
		quoted[i] = strconv.Quote(s)
	}
	return "space IN (" + strings.Join(quoted, ",") + ") AND (" + cql + ")"
}

// BuildNextURL resolves a _links.next value. Absolute links are used as
// they are. v2 links are site-relative and start with /wiki; v1 links are
// relative to _links.base, which already ends in /wiki.
func BuildNextURL(linksBase, next string) string {
	switch {
	case next == "":
		return ""
	case strings.HasPrefix(next, "http"):
		return next
	case strings.HasPrefix(next, "/wiki/"):
		return next
	default:
		return linksBase + next
	}
}
