package jira

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/randalmurphal/adfbridge/adf"
	bridgehttp "github.com/randalmurphal/adfbridge/http"
)

// apiBase is the Jira Cloud REST v3 prefix; v3 is the version that speaks ADF.
const apiBase = "/rest/api/3"

// AtlassianEndpoint is the OAuth 2.0 (3LO) endpoint for Atlassian Cloud.
var AtlassianEndpoint = oauth2.Endpoint{
	AuthURL:  "https://auth.atlassian.com/authorize",
	TokenURL: "https://auth.atlassian.com/oauth/token",
}

// Client provides access to the Jira Cloud REST API. Rich-text fields are
// sent as ADF and can be read back as Markdown.
type Client struct {
	cfg        *Config
	httpClient *http.Client
	api        *bridgehttp.Client
	renderer   *adf.Renderer
	logger     *slog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request and rendering diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new Jira client.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, validateErr
	}

	timeout := cfg.HTTP.Timeout
	if timeout == 0 {
		timeout = bridgehttp.DefaultTimeout
	}

	c := &Client{
		cfg: cfg.Clone(),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    cfg.HTTP.MaxIdleConns,
				IdleConnTimeout: cfg.HTTP.IdleConnTimeout,
			},
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	rendererOpts := []adf.Option{adf.WithLogger(c.logger)}
	if cfg.MaxDepth > 0 {
		rendererOpts = append(rendererOpts, adf.WithMaxDepth(cfg.MaxDepth))
	}
	c.renderer = adf.NewRenderer(rendererOpts...)

	clientCfg := bridgehttp.ClientConfig{
		Client:       c.httpClient,
		BaseURL:      cfg.URL,
		ServiceName:  "jira",
		MaxRetries:   cfg.RateLimit.MaxRetries,
		RetryWait:    cfg.RateLimit.RetryWaitMin,
		MaxRetryWait: cfg.RateLimit.RetryWaitMax,
		Jitter:       cfg.RateLimit.RetryJitter,
		Logger:       c.logger,
	}

	switch cfg.Auth.Type {
	case AuthAPIToken:
		clientCfg.BeforeRequest = bridgehttp.BasicAuth(cfg.Auth.Email, cfg.Auth.Token)
	case AuthOAuth2:
		clientCfg.Client = OAuth2HTTPClient(c.httpClient, cfg.Auth)
	}

	c.api = bridgehttp.NewClient(clientCfg)
	return c, nil
}

// OAuth2HTTPClient returns a copy of base whose transport authorizes requests
// with the configured OAuth 2.0 token. With a refresh token and client
// credentials the token is refreshed against AtlassianEndpoint on expiry.
func OAuth2HTTPClient(base *http.Client, auth AuthConfig) *http.Client {
	token := &oauth2.Token{AccessToken: auth.AccessToken, RefreshToken: auth.RefreshToken}

	var source oauth2.TokenSource
	if auth.RefreshToken != "" && auth.ClientID != "" {
		conf := &oauth2.Config{
			ClientID:     auth.ClientID,
			ClientSecret: auth.ClientSecret,
			Endpoint:     AtlassianEndpoint,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		source = conf.TokenSource(ctx, token)
	} else {
		source = oauth2.StaticTokenSource(token)
	}

	wrapped := *base
	wrapped.Transport = &oauth2.Transport{Source: source, Base: base.Transport}
	return &wrapped
}

// Renderer returns the renderer used for descriptions and comments.
func (c *Client) Renderer() *adf.Renderer {
	return c.renderer
}

// RateLimitRemaining returns the remaining rate limit capacity.
// Returns -1 if unknown.
func (c *Client) RateLimitRemaining() int {
	return c.api.RateLimitRemaining()
}

// renderField renders a rich-text field with the client's renderer.
func (c *Client) renderField(raw json.RawMessage) string {
	return renderRichText(c.renderer, raw)
}

// renderRichText renders a rich-text field to Markdown. Documents become
// Markdown; plain JSON strings are returned as is.
func renderRichText(r *adf.Renderer, raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	}
	return r.Render(raw)
}

// Context key type for storing Jira client in context.
type jiraClientKey struct{}

// ClientFromContext extracts a Jira Client from a context.
// Returns nil if no Client is present.
func ClientFromContext(ctx context.Context) *Client {
	if c, ok := ctx.Value(jiraClientKey{}).(*Client); ok {
		return c
	}
	return nil
}

// ContextWithClient adds a Jira Client to a context.
func ContextWithClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, jiraClientKey{}, c)
}
