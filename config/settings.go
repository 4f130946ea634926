package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/randalmurphal/adfbridge/confluence"
	"github.com/randalmurphal/adfbridge/jira"
)

// Settings validation errors.
var (
	ErrDomainRequired   = errors.New("atlassian domain is not configured")
	ErrDomainInvalid    = errors.New("atlassian domain must be a *.atlassian.net site")
	ErrEmailRequired    = errors.New("atlassian email is not configured")
	ErrEmailInvalid     = errors.New("atlassian email is not an email address")
	ErrAPITokenRequired = errors.New("atlassian api token is not configured")
	ErrTimeoutRange     = errors.New("request timeout must be between 100ms and 60000ms")
	ErrMaxDepthInvalid  = errors.New("max_depth must be positive")
	ErrWorkersInvalid   = errors.New("workers must not be negative")
	ErrAuthTypeInvalid  = errors.New("auth_type must be api_token or oauth2")
)

// Timeout bounds in milliseconds.
const (
	MinRequestTimeoutMS = 100
	MaxRequestTimeoutMS = 60000
)

// Settings is the typed view of a resolved configuration.
type Settings struct {
	Domain   string
	Email    string
	APIToken string

	AuthType          jira.AuthType
	OAuthClientID     string
	OAuthClientSecret string
	OAuthAccessToken  string
	OAuthRefreshToken string

	ProjectsFilter      []string
	SearchDefaultFields []string
	SearchCustomFields  []string
	SpacesFilter        []string
	CustomIncludes      []string

	RequestTimeout time.Duration
	MaxDepth       int

	// Workers sizes the batch pool; 0 means GOMAXPROCS.
	Workers int

	NoColor bool
}

// Load converts resolved values into Settings. It fails only on values that
// do not parse; use Validate for semantic checks.
func Load(r *Resolved) (*Settings, error) {
	timeoutMS, timeoutErr := r.Int(KeyRequestTimeoutMS)
	if timeoutErr != nil {
		return nil, timeoutErr
	}
	maxDepth, depthErr := r.Int(KeyMaxDepth)
	if depthErr != nil {
		return nil, depthErr
	}
	workers, workersErr := r.Int(KeyWorkers)
	if workersErr != nil {
		return nil, workersErr
	}

	return &Settings{
		Domain:              strings.TrimSpace(r.Get(KeyDomain)),
		Email:               strings.TrimSpace(r.Get(KeyEmail)),
		APIToken:            r.Get(KeyAPIToken),
		AuthType:            jira.AuthType(r.Get(KeyAuthType)),
		OAuthClientID:       r.Get(KeyOAuthClientID),
		OAuthClientSecret:   r.Get(KeyOAuthClientSecret),
		OAuthAccessToken:    r.Get(KeyOAuthAccessToken),
		OAuthRefreshToken:   r.Get(KeyOAuthRefreshToken),
		ProjectsFilter:      r.List(KeyProjectsFilter),
		SearchDefaultFields: r.List(KeySearchDefaultFields),
		SearchCustomFields:  r.List(KeySearchCustomFields),
		SpacesFilter:        r.List(KeySpacesFilter),
		CustomIncludes:      r.List(KeyCustomIncludes),
		RequestTimeout:      time.Duration(timeoutMS) * time.Millisecond,
		MaxDepth:            maxDepth,
		Workers:             workers,
		NoColor:             r.Bool(KeyNoColor),
	}, nil
}

// Validate checks the settings every command needs.
func (s *Settings) Validate() error {
	if s.MaxDepth <= 0 {
		return ErrMaxDepthInvalid
	}
	if s.Workers < 0 {
		return ErrWorkersInvalid
	}
	ms := s.RequestTimeout.Milliseconds()
	if ms < MinRequestTimeoutMS || ms > MaxRequestTimeoutMS {
		return fmt.Errorf("%w (got %dms)", ErrTimeoutRange, ms)
	}
	return nil
}

// ValidateCredentials checks the settings remote commands need.
func (s *Settings) ValidateCredentials() error {
	if err := s.Validate(); err != nil {
		return err
	}

	if s.Domain == "" {
		return ErrDomainRequired
	}
	host := strings.TrimPrefix(strings.TrimPrefix(s.Domain, "https://"), "http://")
	if !strings.Contains(host, ".atlassian.net") {
		return fmt.Errorf("%w: %s", ErrDomainInvalid, s.Domain)
	}

	switch s.AuthType {
	case jira.AuthAPIToken, "":
		if s.Email == "" {
			return ErrEmailRequired
		}
		if !strings.Contains(s.Email, "@") {
			return fmt.Errorf("%w: %s", ErrEmailInvalid, s.Email)
		}
		if s.APIToken == "" {
			return ErrAPITokenRequired
		}
	case jira.AuthOAuth2:
		// Checked by the client config.
	default:
		return fmt.Errorf("%w: %q", ErrAuthTypeInvalid, s.AuthType)
	}
	return nil
}

// BaseURL returns the site root: a bare domain gets https://, and http://
// is upgraded.
func (s *Settings) BaseURL() string {
	domain := strings.TrimSuffix(s.Domain, "/")
	switch {
	case domain == "":
		return ""
	case strings.HasPrefix(domain, "https://"):
		return domain
	case strings.HasPrefix(domain, "http://"):
		return "https://" + strings.TrimPrefix(domain, "http://")
	default:
		return "https://" + domain
	}
}

func (s *Settings) auth() jira.AuthConfig {
	authType := s.AuthType
	if authType == "" {
		authType = jira.AuthAPIToken
	}
	return jira.AuthConfig{
		Type:         authType,
		Email:        s.Email,
		Token:        s.APIToken,
		ClientID:     s.OAuthClientID,
		ClientSecret: s.OAuthClientSecret,
		AccessToken:  s.OAuthAccessToken,
		RefreshToken: s.OAuthRefreshToken,
	}
}

// JiraConfig builds the Jira client configuration.
func (s *Settings) JiraConfig() *jira.Config {
	cfg := jira.DefaultConfig()
	cfg.URL = s.BaseURL()
	cfg.Auth = s.auth()
	if s.RequestTimeout > 0 {
		cfg.HTTP.Timeout = s.RequestTimeout
	}
	cfg.Search = jira.SearchConfig{
		ProjectsFilter: s.ProjectsFilter,
		DefaultFields:  s.SearchDefaultFields,
		CustomFields:   s.SearchCustomFields,
	}
	cfg.MaxDepth = s.MaxDepth
	return cfg
}

// ConfluenceConfig builds the Confluence client configuration.
func (s *Settings) ConfluenceConfig() *confluence.Config {
	cfg := confluence.DefaultConfig()
	cfg.URL = s.BaseURL()
	cfg.Auth = s.auth()
	if s.RequestTimeout > 0 {
		cfg.HTTP.Timeout = s.RequestTimeout
	}
	cfg.SpacesFilter = s.SpacesFilter
	cfg.CustomIncludes = s.CustomIncludes
	cfg.MaxDepth = s.MaxDepth
	return cfg
}
