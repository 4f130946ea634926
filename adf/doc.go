// Package adf converts between Atlassian Document Format and Markdown.
//
// The outbound path turns Markdown into ADF:
//
//	doc := adf.Build("## Title\n\nSome **bold** text.")
//	body, err := adf.ProcessDescriptionInput(userValue)
//
// The inbound path renders ADF received from Jira or Confluence:
//
//	md := adf.ToMarkdown(issue.Fields.Description)
//
// Building and validating fail fast so bad input is caught before it is
// sent. Rendering never fails: unknown node kinds, missing attributes and
// excessive nesting degrade to placeholders or are dropped.
package adf
