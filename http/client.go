package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the default number of attempts per request.
const DefaultMaxRetries = 3

// DefaultRetryWait is the default initial wait between retries.
const DefaultRetryWait = 1 * time.Second

// DefaultMaxRetryWait caps the backoff between retries.
const DefaultMaxRetryWait = 30 * time.Second

// RequestIDHeader carries the client-generated correlation id.
const RequestIDHeader = "X-Request-Id"

// Client is a retrying JSON client bound to one Atlassian site.
type Client struct {
	client       *http.Client
	baseURL      string
	serviceName  string
	maxRetries   int
	retryWait    time.Duration
	maxRetryWait time.Duration
	jitter       bool
	logger       *slog.Logger

	// beforeRequest is called before each attempt (auth headers).
	beforeRequest func(req *http.Request)

	mu        sync.RWMutex
	remaining int
	resetTime time.Time
}

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	Client        *http.Client
	BaseURL       string
	ServiceName   string
	MaxRetries    int
	RetryWait     time.Duration
	MaxRetryWait  time.Duration
	Jitter        bool
	Logger        *slog.Logger
	BeforeRequest func(req *http.Request)
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		client:        cfg.Client,
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName:   cfg.ServiceName,
		maxRetries:    cfg.MaxRetries,
		retryWait:     cfg.RetryWait,
		maxRetryWait:  cfg.MaxRetryWait,
		jitter:        cfg.Jitter,
		logger:        cfg.Logger,
		beforeRequest: cfg.BeforeRequest,
		remaining:     -1,
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryWait <= 0 {
		c.retryWait = DefaultRetryWait
	}
	if c.maxRetryWait <= 0 {
		c.maxRetryWait = DefaultMaxRetryWait
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// BasicAuth returns a BeforeRequest hook that sets HTTP Basic credentials,
// the scheme Atlassian Cloud uses for email + API token.
func BasicAuth(username, password string) func(req *http.Request) {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Basic "+credentials)
	}
}

// BaseURL returns the site root requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request executes an HTTP request with retries for transient errors.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*http.Response, error) {
	return c.RequestWithHeaders(ctx, method, path, body, nil)
}

// RequestWithHeaders executes an HTTP request with custom headers.
// A path starting with http:// or https:// is used as is, which lets
// callers follow absolute "next" links returned by the API.
func (c *Client) RequestWithHeaders(
	ctx context.Context,
	method, path string,
	body any,
	headers map[string]string,
) (*http.Response, error) {
	var data []byte
	if body != nil {
		encoded, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return nil, fmt.Errorf("marshal request body: %w", marshalErr)
		}
		data = encoded
	}

	target := c.resolve(path)
	requestID := nanoid.Must()

	wait := c.retryWait
	var lastErr error
	for attempt := range c.maxRetries {
		var bodyReader io.Reader
		if data != nil {
			bodyReader = bytes.NewReader(data)
		}

		req, reqErr := http.NewRequestWithContext(ctx, method, target, bodyReader)
		if reqErr != nil {
			return nil, fmt.Errorf("create request: %w", reqErr)
		}

		req.Header.Set("Accept", "application/json")
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set(RequestIDHeader, requestID)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if c.beforeRequest != nil {
			c.beforeRequest(req)
		}

		resp, doErr := c.client.Do(req)
		if doErr != nil {
			lastErr = doErr
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < c.maxRetries-1 {
				c.logger.Warn("request failed, retrying",
					"service", c.serviceName, "method", method, "path", path,
					"attempt", attempt+1, "request_id", requestID, "error", doErr)
				if waitErr := c.sleep(ctx, wait); waitErr != nil {
					return nil, waitErr
				}
				wait = min(wait*2, c.maxRetryWait)
				continue
			}
			return nil, fmt.Errorf("%s request failed: %w", c.serviceName, doErr)
		}

		c.updateRateLimitState(resp)
		c.logger.Debug("request",
			"service", c.serviceName, "method", method, "path", path,
			"status", resp.StatusCode, "attempt", attempt+1, "request_id", requestID)

		if !shouldRetry(resp) || attempt == c.maxRetries-1 {
			return resp, nil
		}

		delay := c.retryDelay(resp, wait)
		_ = resp.Body.Close()
		c.logger.Warn("retryable response",
			"service", c.serviceName, "method", method, "path", path,
			"status", resp.StatusCode, "attempt", attempt+1, "wait", delay, "request_id", requestID)

		if waitErr := c.sleep(ctx, delay); waitErr != nil {
			return nil, waitErr
		}
		wait = min(wait*2, c.maxRetryWait)
	}

	return nil, lastErr
}

// Get performs a GET request and decodes the response into result.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	resp, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, path, result)
}

// Post performs a POST request and decodes the response into result.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	resp, err := c.Request(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, path, result)
}

// Put performs a PUT request and decodes the response into result.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	resp, err := c.Request(ctx, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, path, result)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	resp, err := c.Request(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, path, nil)
}

// GetRaw performs a GET request and returns the raw response body.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.RequestWithHeaders(ctx, http.MethodGet, path, nil, map[string]string{"Accept": "*/*"})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.parseError(resp, path)
	}

	return io.ReadAll(resp.Body)
}

// RateLimitRemaining returns the last X-RateLimit-Remaining value, or -1 if unknown.
func (c *Client) RateLimitRemaining() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remaining
}

// RateLimitReset returns the last X-RateLimit-Reset time, if any.
func (c *Client) RateLimitReset() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetTime
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

// handleResponse checks status and decodes the response body.
func (c *Client) handleResponse(resp *http.Response, path string, result any) error {
	if resp.StatusCode >= 400 {
		return c.parseError(resp, path)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(result); decodeErr != nil {
		if decodeErr == io.EOF {
			return nil
		}
		return fmt.Errorf("decode %s response: %w", c.serviceName, decodeErr)
	}

	return nil
}

// parseError parses an error response into an APIError, or a RateLimitError
// when a 429 survived every retry.
func (c *Client) parseError(resp *http.Response, path string) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			Service:    c.serviceName,
			RetryAfter: retryAfter(resp),
			Remaining:  c.RateLimitRemaining(),
		}
	}

	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{
		Service:    c.serviceName,
		StatusCode: resp.StatusCode,
		Endpoint:   path,
		RequestID:  resp.Header.Get("X-Arequestid"),
	}
	if apiErr.RequestID == "" && resp.Request != nil {
		apiErr.RequestID = resp.Request.Header.Get(RequestIDHeader)
	}

	// Jira uses errorMessages/errors; Confluence v2 uses errors[].title.
	var errResp struct {
		Message       string          `json:"message"`
		Error         string          `json:"error"`
		ErrorMessages []string        `json:"errorMessages"`
		Errors        json.RawMessage `json:"errors"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		switch {
		case errResp.Message != "":
			apiErr.Message = errResp.Message
		case errResp.Error != "":
			apiErr.Message = errResp.Error
		case len(errResp.ErrorMessages) > 0:
			apiErr.Message = strings.Join(errResp.ErrorMessages, "; ")
		}

		var fields map[string]string
		var list []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		switch {
		case json.Unmarshal(errResp.Errors, &fields) == nil && len(fields) > 0:
			apiErr.FieldErrors = fields
		case json.Unmarshal(errResp.Errors, &list) == nil && len(list) > 0 && apiErr.Message == "":
			msgs := make([]string, 0, len(list))
			for _, e := range list {
				msgs = append(msgs, strings.TrimSpace(e.Title+" "+e.Detail))
			}
			apiErr.Message = strings.Join(msgs, "; ")
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

// retryDelay picks the wait before the next attempt: Retry-After when the
// server sent one, otherwise the current backoff, with optional jitter.
func (c *Client) retryDelay(resp *http.Response, backoff time.Duration) time.Duration {
	delay := backoff
	if ra := retryAfter(resp); ra > 0 {
		delay = ra
	}
	if c.jitter {
		delay = time.Duration(float64(delay) * (0.7 + cryptoRandFloat64()*0.6))
	}
	return min(delay, c.maxRetryWait)
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// updateRateLimitState records rate limit headers from a response.
func (c *Client) updateRateLimitState(resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		if val, parseErr := strconv.Atoi(remaining); parseErr == nil {
			c.remaining = val
		}
	}

	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if t, parseErr := time.Parse(time.RFC3339, reset); parseErr == nil {
			c.resetTime = t
		}
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

// shouldRetry reports whether a response status is transient.
func shouldRetry(resp *http.Response) bool {
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}

// cryptoRandFloat64 returns a random float64 in [0.0, 1.0).
func cryptoRandFloat64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0.5
	}
	u := binary.LittleEndian.Uint64(b[:])
	return math.Min(float64(u>>11)/(1<<53), math.Nextafter(1, 0))
}
