package jira

import (
	"slices"
	"strings"
)

// DefaultSearchFields are requested by searches that name no fields. They
// cover identification, people, dates, classification and hierarchy while
// leaving out heavy content such as the description.
var DefaultSearchFields = []string{
	"key",
	"summary",
	"status",
	"priority",
	"issuetype",
	"assignee",
	"reporter",
	"creator",
	"created",
	"updated",
	"duedate",
	"resolutiondate",
	"project",
	"labels",
	"components",
	"parent",
	"subtasks",
}

// EssentialFields are requested by the single-issue endpoints (create,
// comment, transitions).
var EssentialFields = []string{
	"key",
	"summary",
	"description",
	"issuetype",
	"status",
	"priority",
	"assignee",
	"reporter",
	"created",
	"updated",
	"project",
}

// issueViewFields are requested by GetIssue.
var issueViewFields = []string{
	"summary", "description", "status", "priority", "issuetype",
	"assignee", "reporter", "project", "created", "updated", "attachment",
}

// ResolveSearchFields picks the field list for a search. Explicit fields win;
// otherwise configured defaults replace the built-ins entirely; otherwise the
// built-ins are extended with the configured custom fields. When the results
// will be rendered as Markdown the description is always requested.
func ResolveSearchFields(explicit []string, cfg SearchConfig, asMarkdown bool) []string {
	var fields []string
	switch {
	case len(explicit) > 0:
		fields = slices.Clone(explicit)
	case len(cfg.DefaultFields) > 0:
		fields = slices.Clone(cfg.DefaultFields)
	default:
		fields = make([]string, 0, len(DefaultSearchFields)+len(cfg.CustomFields)+1)
		fields = append(fields, DefaultSearchFields...)
		fields = append(fields, cfg.CustomFields...)
	}

	if asMarkdown && !slices.Contains(fields, "description") {
		fields = append(fields, "description")
	}
	return fields
}

// ApplyFieldFiltering appends the essential field list to an endpoint path
// and excludes rendered fields from the response.
func ApplyFieldFiltering(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "fields=" + strings.Join(EssentialFields, ",") + "&expand=-renderedFields"
}

// ParseFieldList splits a comma-separated field list, dropping blanks.
func ParseFieldList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
