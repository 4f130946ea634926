package confluence

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/randalmurphal/adfbridge/adf"
	bridgehttp "github.com/randalmurphal/adfbridge/http"
	"github.com/randalmurphal/adfbridge/jira"
)

// API prefixes. CQL search is only available on v1.
const (
	apiV2     = "/wiki/api/v2"
	searchAPI = "/wiki/rest/api/search"
)

// Client provides access to Confluence Cloud pages.
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

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new Confluence client.
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
		ServiceName:  "confluence",
		MaxRetries:   cfg.RateLimit.MaxRetries,
		RetryWait:    cfg.RateLimit.RetryWaitMin,
		MaxRetryWait: cfg.RateLimit.RetryWaitMax,
		Jitter:       cfg.RateLimit.RetryJitter,
		Logger:       c.logger,
	}
	switch cfg.Auth.Type {
	case jira.AuthAPIToken:
		clientCfg.BeforeRequest = bridgehttp.BasicAuth(cfg.Auth.Email, cfg.Auth.Token)
	case jira.AuthOAuth2:
		clientCfg.Client = jira.OAuth2HTTPClient(c.httpClient, cfg.Auth)
	}
	c.api = bridgehttp.NewClient(clientCfg)

	return c, nil
}

// Renderer returns the renderer used for page and comment bodies.
func (c *Client) Renderer() *adf.Renderer {
	return c.renderer
}

// fieldOptions fills in defaults and the configured custom includes.
func (c *Client) fieldOptions(opts *FieldOptions) FieldOptions {
	o := DefaultFieldOptions()
	if opts != nil {
		o = *opts
	}
	return o.WithIncludes(c.cfg.CustomIncludes...)
}

// renderBody renders an atlas_doc_format body. The API returns the document
// as a JSON string inside the body value.
func (c *Client) renderBody(body Body) string {
	if body.AtlasDocFormat == nil || body.AtlasDocFormat.Value == "" {
		return ""
	}
	return c.renderer.Render([]byte(body.AtlasDocFormat.Value))
}

// listIterator pages through a v2 list endpoint, following _links.next.
func listIterator[T any](c *Client, firstPath string, each func(*T)) *bridgehttp.CursorIterator[T] {
	return bridgehttp.NewCursorIterator(func(ctx context.Context, cursor string) ([]T, string, error) {
		path := firstPath
		if cursor != "" {
			path = cursor
		}

		var page listResponse[T]
		if getErr := c.api.Get(ctx, path, &page); getErr != nil {
			return nil, "", getErr
		}
		for i := range page.Results {
			each(&page.Results[i])
		}
		return page.Results, BuildNextURL(c.linksBase(page.Links), page.Links.Next), nil
	}).WithPageDelay(c.cfg.RateLimit.PageDelay)
}

func (c *Client) linksBase(links Links) string {
	if links.Base != "" {
		return links.Base
	}
	return c.api.BaseURL() + "/wiki"
}
