package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/randalmurphal/adfbridge/confluence"
	"github.com/randalmurphal/adfbridge/jira"
)

var issueCommand = &command{
	name:    "issue",
	usage:   "issue KEY",
	summary: "print a Jira issue with its comments as Markdown",
	setup: func(fs *flag.FlagSet) func(context.Context, *app, []string) error {
		asJSON := fs.Bool("json", false, "print the issue view as JSON")
		fs.Int("max-depth", 0, "nesting depth at which rendering stops")

		return func(ctx context.Context, a *app, args []string) error {
			if len(args) != 1 {
				return usageError("issue takes exactly one issue key", "issue KEY")
			}
			client, clientErr := a.jira()
			if clientErr != nil {
				return clientErr
			}

			issue, getErr := client.GetIssue(ctx, args[0], jira.ViewOptions{AsMarkdown: true})
			if getErr != nil {
				return getErr
			}
			if *asJSON {
				return writeJSON(a.env.Stdout, issue)
			}
			_, writeErr := io.WriteString(a.env.Stdout, formatIssue(issue))
			return writeErr
		}
	},
}

// formatIssue lays an issue out as a Markdown document.
func formatIssue(issue *jira.IssueView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s: %s\n\n", issue.Key, issue.Summary)

	for _, field := range [][2]string{
		{"Type", issue.Type},
		{"Status", issue.Status},
		{"Priority", issue.Priority},
		{"Assignee", issue.Assignee},
		{"Reporter", issue.Reporter},
		{"Created", issue.Created},
		{"Updated", issue.Updated},
	} {
		if field[1] != "" {
			fmt.Fprintf(&sb, "- **%s:** %s\n", field[0], field[1])
		}
	}

	if issue.Description != "" {
		sb.WriteString("\n## Description\n\n")
		sb.WriteString(issue.Description)
		sb.WriteString("\n")
	}

	if len(issue.Attachments) > 0 {
		sb.WriteString("\n## Attachments\n\n")
		for _, att := range issue.Attachments {
			fmt.Fprintf(&sb, "- %s (id:%s)\n", att.Filename, att.ID)
		}
	}

	if len(issue.Comments) > 0 {
		sb.WriteString("\n## Comments\n")
		for _, c := range issue.Comments {
			author := c.Author
			if author == "" {
				author = "unknown"
			}
			fmt.Fprintf(&sb, "\n### %s, %s\n\n%s\n", author, c.Created, c.Body)
		}
	}
	return sb.String()
}

var commentCommand = &command{
	name:    "comment",
	usage:   "comment KEY TEXT|-",
	summary: "add a Markdown comment to a Jira issue",
	setup: func(*flag.FlagSet) func(context.Context, *app, []string) error {
		return func(ctx context.Context, a *app, args []string) error {
			if len(args) != 2 {
				return usageError("comment takes an issue key and the comment text", "comment KEY TEXT|-")
			}
			text := args[1]
			if text == "-" {
				data, _, readErr := a.readInput(nil)
				if readErr != nil {
					return readErr
				}
				text = string(data)
			}

			client, clientErr := a.jira()
			if clientErr != nil {
				return clientErr
			}
			comment, addErr := client.AddComment(ctx, args[0], text)
			if addErr != nil {
				return addErr
			}
			fmt.Fprintf(a.env.Stdout, "added comment %s to %s\n", comment.ID, args[0])
			return nil
		}
	},
}

var searchCommand = &command{
	name:    "search",
	usage:   "search JQL",
	summary: "list Jira issues matching a JQL query",
	setup: func(fs *flag.FlagSet) func(context.Context, *app, []string) error {
		limit := fs.IntP("limit", "n", 20, "maximum number of issues")

		return func(ctx context.Context, a *app, args []string) error {
			if len(args) != 1 {
				return usageError("search takes one JQL query", "search JQL")
			}
			if *limit <= 0 {
				return usageError("--limit must be positive", "search --limit N JQL")
			}
			client, clientErr := a.jira()
			if clientErr != nil {
				return clientErr
			}

			issues, searchErr := client.SearchAll(args[0], nil).Take(ctx, *limit)
			if searchErr != nil {
				return searchErr
			}
			for _, issue := range issues {
				status := ""
				if issue.Fields.Status != nil {
					status = issue.Fields.Status.Name
				}
				fmt.Fprintf(a.env.Stdout, "%s\t%s\t%s\n", issue.Key, status, issue.Fields.Summary)
			}
			a.infof("%d issue(s)", len(issues))
			return nil
		}
	},
}

var pageCommand = &command{
	name:    "page",
	usage:   "page ID",
	summary: "print a Confluence page as Markdown",
	setup: func(fs *flag.FlagSet) func(context.Context, *app, []string) error {
		storage := fs.Bool("storage", false, "print the cleaned storage-format body instead")
		comments := fs.Bool("comments", false, "append footer comments")
		fs.Int("max-depth", 0, "nesting depth at which rendering stops")

		return func(ctx context.Context, a *app, args []string) error {
			if len(args) != 1 {
				return usageError("page takes exactly one page id", "page ID")
			}
			client, clientErr := a.confluence()
			if clientErr != nil {
				return clientErr
			}

			opts := confluence.DefaultFieldOptions()
			if *storage {
				opts.BodyFormat = confluence.RepresentationStorage
			}
			page, getErr := client.GetPage(ctx, args[0], &opts)
			if getErr != nil {
				return getErr
			}

			body := page.Markdown
			if *storage && page.Body.Storage != nil {
				body = page.Body.Storage.Value
			}
			fmt.Fprintf(a.env.Stdout, "# %s\n\n%s\n", page.Title, body)

			if !*comments {
				return nil
			}
			return client.GetFooterComments(page.ID).ForEach(ctx, func(c confluence.Comment) error {
				_, writeErr := fmt.Fprintf(a.env.Stdout, "\n---\n\n%s\n", c.Markdown)
				return writeErr
			})
		}
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
