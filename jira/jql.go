package jira

import (
	"strconv"
	"strings"
)

// ApplyProjectFilter scopes a JQL query to projects. Queries whose conditions
// already mention a project are returned unchanged, and a trailing ORDER BY
// clause stays at the end.
//
//	ApplyProjectFilter("status = Open ORDER BY created", []string{"A", "B"})
//	// project IN ("A","B") AND (status = Open) ORDER BY created
func ApplyProjectFilter(jql string, projects []string) string {
	if len(projects) == 0 {
		return jql
	}

	lower := strings.ToLower(jql)
	conditions, orderBy := jql, ""
	if pos := strings.Index(lower, " order by "); pos >= 0 {
		conditions, orderBy = jql[:pos], jql[pos:]
	} else if strings.HasPrefix(lower, "order by ") {
		conditions, orderBy = "", " "+jql
	}

	condLower := strings.ToLower(conditions)
	if strings.Contains(condLower, "project ") ||
		strings.Contains(condLower, "project=") ||
		strings.Contains(condLower, "project in") {
		return jql
	}

	quoted := make([]string, len(projects))
	for i, p := range projects {
		quoted[i] = strconv.Quote(p)
	}

	base := "project IN (" + strings.Join(quoted, ",") + ")"
	if trimmed := strings.TrimSpace(conditions); trimmed != "" {
		base += " AND (" + trimmed + ")"
	}
	return base + orderBy
}
