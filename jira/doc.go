// Package jira provides a client for the Jira Cloud REST API (v3).
//
// Descriptions and comments are Atlassian Document Format (ADF) documents.
// The client accepts them as Markdown text or ADF and converts with package
// adf; on the way out it renders them back to Markdown.
//
// # Authentication
//
//   - API Token: email + API token (HTTP Basic)
//   - OAuth 2.0 (3LO): access token, optionally refreshed with a refresh
//     token and client credentials against auth.atlassian.com
//
// # Usage
//
//	cfg := jira.DefaultConfig()
//	cfg.URL = "https://your-domain.atlassian.net"
//	cfg.Auth.Email = "you@example.com"
//	cfg.Auth.Token = "your-api-token"
//
//	client, err := jira.NewClient(cfg)
//	if err != nil {
//		return err
//	}
//
//	issue, err := client.GetIssue(ctx, "PROJ-123", jira.ViewOptions{AsMarkdown: true})
//	fmt.Println(issue.Description)
//
//	_, err = client.AddComment(ctx, "PROJ-123", "Fixed in **v1.2**.")
//
// # Search
//
// Search and SearchAll scope JQL with the configured project filter and
// request a resolved field list. SearchAll follows nextPageToken:
//
//	iter := client.SearchAll("status = Open ORDER BY created", nil)
//	err := iter.ForEach(ctx, func(issue jira.Issue) error { ... })
//
// # Error Handling
//
// Errors from the API unwrap to the sentinels in package http:
//
//	if errors.Is(err, http.ErrNotFound) {
//		// Issue doesn't exist
//	}
//
// Invalid descriptions or comments fail before any request is sent, with
// the adf package's input and validation errors.
package jira
