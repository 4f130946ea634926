package config

import (
	"strconv"

	"github.com/randalmurphal/adfbridge/adf"
)

// Configuration keys.
const (
	KeyDomain   = "domain"
	KeyEmail    = "email"
	KeyAPIToken = "api_token"

	KeyAuthType          = "auth_type"
	KeyOAuthClientID     = "oauth_client_id"
	KeyOAuthClientSecret = "oauth_client_secret"
	KeyOAuthAccessToken  = "oauth_access_token"
	KeyOAuthRefreshToken = "oauth_refresh_token"

	KeyProjectsFilter      = "jira_projects_filter"
	KeySearchDefaultFields = "jira_search_default_fields"
	KeySearchCustomFields  = "jira_search_custom_fields"
	KeySpacesFilter        = "confluence_spaces_filter"
	KeyCustomIncludes      = "confluence_custom_includes"

	KeyRequestTimeoutMS = "request_timeout_ms"
	KeyMaxDepth         = "max_depth"
	KeyWorkers          = "workers"
	KeyNoColor          = "no_color"
)

// App-level names.
const (
	EnvPrefix       = "ADFBRIDGE_"
	GlobalConfigDir = "adfbridge"
	LocalConfigName = ".adfbridge.yaml"
)

// DefaultRequestTimeoutMS is the default request timeout.
const DefaultRequestTimeoutMS = 30000

// Keys lists every key the configuration files accept.
var Keys = []string{
	KeyDomain, KeyEmail, KeyAPIToken,
	KeyAuthType, KeyOAuthClientID, KeyOAuthClientSecret, KeyOAuthAccessToken, KeyOAuthRefreshToken,
	KeyProjectsFilter, KeySearchDefaultFields, KeySearchCustomFields, KeySpacesFilter, KeyCustomIncludes,
	KeyRequestTimeoutMS, KeyMaxDepth, KeyWorkers, KeyNoColor,
}

// SecretKeys are masked by `config show`.
var SecretKeys = []string{KeyAPIToken, KeyOAuthClientSecret, KeyOAuthAccessToken, KeyOAuthRefreshToken}

// EnvNames are the conventional Atlassian variables, read alongside the
// ADFBRIDGE_ prefixed ones.
var EnvNames = map[string]string{
	KeyDomain:              "ATLASSIAN_DOMAIN",
	KeyEmail:               "ATLASSIAN_EMAIL",
	KeyAPIToken:            "ATLASSIAN_API_TOKEN",
	KeyProjectsFilter:      "JIRA_PROJECTS_FILTER",
	KeySpacesFilter:        "CONFLUENCE_SPACES_FILTER",
	KeySearchDefaultFields: "JIRA_SEARCH_DEFAULT_FIELDS",
	KeySearchCustomFields:  "JIRA_SEARCH_CUSTOM_FIELDS",
	KeyCustomIncludes:      "CONFLUENCE_CUSTOM_INCLUDES",
	KeyRequestTimeoutMS:    "REQUEST_TIMEOUT_MS",
}

// Defaults are the built-in values.
func Defaults() map[string]string {
	return map[string]string{
		KeyAuthType:         "api_token",
		KeyRequestTimeoutMS: strconv.Itoa(DefaultRequestTimeoutMS),
		KeyMaxDepth:         strconv.Itoa(adf.DefaultMaxDepth),
		KeyWorkers:          "0",
	}
}

// AppResolverConfig returns the resolver configuration for adfbridge.
// explicitFile is the --config flag value and may be empty.
func AppResolverConfig(explicitFile string) ResolverConfig {
	return ResolverConfig{
		EnvPrefix:       EnvPrefix,
		EnvNames:        EnvNames,
		GlobalConfigDir: GlobalConfigDir,
		LocalConfigName: LocalConfigName,
		ExplicitFile:    explicitFile,
		Defaults:        Defaults(),
		ValidKeys:       Keys,
	}
}

// AppSaveConfig returns the saver matching AppResolverConfig.
func AppSaveConfig() SaveConfig {
	return SaveConfig{
		GlobalConfigDir: GlobalConfigDir,
		LocalConfigName: LocalConfigName,
		ValidKeys:       Keys,
	}
}
