package box

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/box-community/mcp-server-box/internal/logging"
)

const (
	// DefaultBaseURL is the Box content API root.
	DefaultBaseURL = "https://api.box.com/2.0"
	// DefaultUploadURL is the separate host Box uses for uploads.
	DefaultUploadURL = "https://upload.box.com/api/2.0"

	libraryHeader = "x-box-mcp-library"
	libraryValue  = "mcp-server-box/go"
)

// Client is a thin REST client for the Box content API. It is immutable
// after construction and safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	uploadURL  string
	logger     *slog.Logger
}

// Option adjusts client construction, mainly for tests.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithUploadURL points uploads at a different host.
func WithUploadURL(u string) Option {
	return func(c *Client) { c.uploadURL = u }
}

// NewClient builds a client whose requests are authorized by src.
func NewClient(src oauth2.TokenSource, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: &oauth2.Transport{Source: src},
			Timeout:   60 * time.Second,
		},
		baseURL:   DefaultBaseURL,
		uploadURL: DefaultUploadURL,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientWithToken builds a client around a single bearer token, as used
// by the oauth and mcp_client auth modes.
func NewClientWithToken(token string, logger *slog.Logger, opts ...Option) *Client {
	return NewClient(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), logger, opts...)
}

// get issues a GET for path and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, c.baseURL+path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, c.baseURL+path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPut, c.baseURL+path, query, body, out)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values) error {
	return c.do(ctx, http.MethodDelete, c.baseURL+path, query, nil, nil)
}

func (c *Client) do(ctx context.Context, method, rawURL string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(libraryHeader, libraryValue)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "box api call",
		slog.String(logging.KeyMethod, method),
		slog.String(logging.KeyPath, req.URL.Path),
		slog.Int(logging.KeyHTTPStatus, resp.StatusCode),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	if resp.StatusCode >= http.StatusBadRequest {
		return parseAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// raw issues a request and returns the response body, following Box's
// download redirects. Used for file content.
func (c *Client) raw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(libraryHeader, libraryValue)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}
