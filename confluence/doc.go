// Package confluence provides a client for Confluence Cloud pages.
//
// Pages are read and written through the REST v2 API. Bodies are exchanged
// in Atlassian Document Format: CreatePage and UpdatePage accept Markdown or
// ADF and convert with package adf, and GetPage renders atlas_doc_format
// bodies back to Markdown. Pages requested in storage format are scrubbed of
// editor metadata and embedded binary blobs instead (see CleanStorage).
//
// CQL search uses the v1 search endpoint, the only one that accepts CQL, and
// is scoped by the configured space filter:
//
//	client, err := confluence.NewClient(cfg)
//	iter := client.SearchAll("type = page AND text ~ \"runbook\"", nil)
//	results, err := iter.All(ctx)
//
// Credentials are shared with Jira: the same api_token or oauth2 settings
// authenticate both products on one Atlassian site.
package confluence
