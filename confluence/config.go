package confluence

import (
	"fmt"

	"github.com/randalmurphal/adfbridge/jira"
)

// Config holds configuration for the Confluence client.
type Config struct {
	// URL is the Atlassian site root, e.g. https://your-domain.atlassian.net.
	URL string `yaml:"url"`

	// Auth is shared with Jira; one Atlassian account covers both products.
	Auth jira.AuthConfig `yaml:"auth"`

	HTTP jira.HTTPConfig `yaml:"http"`

	RateLimit jira.RateLimitConfig `yaml:"rate_limit"`

	// SpacesFilter scopes CQL searches that do not name a space.
	SpacesFilter []string `yaml:"spaces_filter"`

	// CustomIncludes adds include-<name>=true parameters to page requests.
	CustomIncludes []string `yaml:"custom_includes"`

	// MaxDepth overrides the renderer's nesting limit. Zero keeps the default.
	MaxDepth int `yaml:"max_depth"`
}

// DefaultConfig returns a Config with the same transport defaults as Jira.
func DefaultConfig() *Config {
	base := jira.DefaultConfig()
	return &Config{
		Auth:      base.Auth,
		HTTP:      base.HTTP,
		RateLimit: base.RateLimit,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrConfigURLRequired
	}
	if c.MaxDepth < 0 {
		return ErrConfigMaxDepthInvalid
	}

	// Auth rules are Jira's; the credentials are the same.
	shared := jira.Config{URL: c.URL, Auth: c.Auth}
	if authErr := shared.Validate(); authErr != nil {
		return fmt.Errorf("confluence: %w", authErr)
	}
	return nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.SpacesFilter = append([]string(nil), c.SpacesFilter...)
	clone.CustomIncludes = append([]string(nil), c.CustomIncludes...)
	return &clone
}
