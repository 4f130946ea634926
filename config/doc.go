// Package config resolves adfbridge settings from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags
//  2. Environment: ADFBRIDGE_<KEY>, or the conventional Atlassian variables
//     (ATLASSIAN_DOMAIN, ATLASSIAN_EMAIL, ATLASSIAN_API_TOKEN,
//     JIRA_PROJECTS_FILTER, CONFLUENCE_SPACES_FILTER, ...)
//  3. A file named with --config
//  4. .adfbridge.yaml in the git root
//  5. ~/.config/adfbridge/config.yaml
//  6. Built-in defaults
//
// Files are flat YAML maps. List keys accept a YAML sequence or a
// comma-separated string:
//
//	domain: your-domain.atlassian.net
//	email: you@example.com
//	jira_projects_filter: [PROJ, OPS]
//	max_depth: 50
//
// Each resolved value remembers its Source, which `adfbridge config show`
// prints. Load turns a Resolved into typed Settings, which build the Jira
// and Confluence client configs.
package config
