package jira

import (
	"time"
)

// AuthType represents the type of authentication to use.
type AuthType string

// Authentication types supported by the Jira Cloud client.
const (
	AuthAPIToken AuthType = "api_token" // email + API token, HTTP Basic
	AuthOAuth2   AuthType = "oauth2"    // OAuth 2.0 (3LO) access/refresh token
)

// Config holds the configuration for the Jira client.
type Config struct {
	// URL is the site root, e.g. https://your-domain.atlassian.net.
	URL string `yaml:"url"`

	Auth AuthConfig `yaml:"auth"`

	HTTP HTTPConfig `yaml:"http"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Search SearchConfig `yaml:"search"`

	// MaxDepth bounds ADF rendering of descriptions and comments.
	// Zero uses the renderer default.
	MaxDepth int `yaml:"max_depth"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Type AuthType `yaml:"type"`

	// Email and Token are used by api_token auth.
	Email string `yaml:"email"`
	Token string `yaml:"token"`

	// OAuth2 (3LO) credentials. ClientID and ClientSecret are only
	// needed when RefreshToken is set.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	AccessToken  string `yaml:"access_token"`
	RefreshToken string `yaml:"refresh_token"`
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// RateLimitConfig holds retry and paging delays.
type RateLimitConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	RetryWaitMin time.Duration `yaml:"retry_wait_min"`
	RetryWaitMax time.Duration `yaml:"retry_wait_max"`
	RetryJitter  bool          `yaml:"retry_jitter"`

	// PageDelay is the pause between SearchAll pages.
	PageDelay time.Duration `yaml:"page_delay"`
}

// SearchConfig scopes and shapes issue searches.
type SearchConfig struct {
	// ProjectsFilter restricts JQL that does not already name a project.
	ProjectsFilter []string `yaml:"projects_filter"`

	// DefaultFields replaces DefaultSearchFields when non-empty.
	DefaultFields []string `yaml:"default_fields"`

	// CustomFields are appended to DefaultSearchFields.
	CustomFields []string `yaml:"custom_fields"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Auth: AuthConfig{Type: AuthAPIToken},
		HTTP: HTTPConfig{
			Timeout:         30 * time.Second,
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxRetries:   3,
			RetryWaitMin: 1 * time.Second,
			RetryWaitMax: 30 * time.Second,
			RetryJitter:  true,
			PageDelay:    200 * time.Millisecond,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrConfigURLRequired
	}

	switch c.Auth.Type {
	case "":
		return ErrConfigAuthTypeRequired
	case AuthAPIToken:
		if c.Auth.Email == "" || c.Auth.Token == "" {
			return ErrConfigAPITokenAuth
		}
	case AuthOAuth2:
		if c.Auth.AccessToken == "" && c.Auth.RefreshToken == "" {
			return ErrConfigOAuth2Auth
		}
		if c.Auth.RefreshToken != "" && (c.Auth.ClientID == "" || c.Auth.ClientSecret == "") {
			return ErrConfigOAuth2Refresh
		}
	default:
		return ErrConfigAuthTypeInvalid
	}

	if c.MaxDepth < 0 {
		return ErrConfigMaxDepthInvalid
	}

	return nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Search.ProjectsFilter = append([]string(nil), c.Search.ProjectsFilter...)
	clone.Search.DefaultFields = append([]string(nil), c.Search.DefaultFields...)
	clone.Search.CustomFields = append([]string(nil), c.Search.CustomFields...)
	return &clone
}
