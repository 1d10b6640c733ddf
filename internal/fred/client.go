// Package fred implements a client for the FRED (Federal Reserve Economic
// Data) REST API: keyword search over series metadata, time-series
// retrieval with full revision history, and point-in-time panel
// construction from that history.
//
// Requires a free API key from https://fred.stlouisfed.org/docs/api/api_key.html
// Docs: https://fred.stlouisfed.org/docs/api/fred/
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/fredpanel/fredpanel/internal/infra"
)

const (
	// DefaultBaseURL is the production FRED API endpoint.
	DefaultBaseURL = "https://api.stlouisfed.org/fred"
	// DefaultFeedURL is the FRED RSS endpoint for series release feeds.
	DefaultFeedURL = "https://fred.stlouisfed.org/rss"
)

// Client is a stateless FRED API client. It holds only the API key and the
// endpoint URLs; every method call is an independent, synchronous request
// (or request sequence, for paginated fetches).
type Client struct {
	apiKey  string
	baseURL string
	feedURL string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests and proxies.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithFeedURL overrides the RSS feed endpoint.
func WithFeedURL(u string) Option {
	return func(c *Client) { c.feedURL = u }
}

// New creates a FRED client with the given API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		feedURL: DefaultFeedURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiURL builds a full API URL for the given endpoint path, appending the
// api_key and file_type=json parameters to the caller's query.
func (c *Client) apiURL(endpoint string, q url.Values) string {
	merged := url.Values{}
	for k, vs := range q {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	merged.Set("api_key", c.apiKey)
	merged.Set("file_type", "json")
	return c.baseURL + "/" + endpoint + "?" + merged.Encode()
}

// getJSON performs one GET against the given endpoint and returns the raw
// response body. HTTP errors propagate unmodified.
func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	body, _, err := infra.DoGet(ctx, c.apiURL(endpoint, q), nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// envelope decodes a top-level API response, extracting the listing under
// key into dest and returning every sibling field as the metadata sidecar.
// A response without the listing key is a structural error.
func envelope(data []byte, key string, dest any) (Meta, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	raw, ok := top[key]
	if !ok {
		return nil, fmt.Errorf("response missing %q key", key)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return nil, fmt.Errorf("parse %q listing: %w", key, err)
	}

	meta := make(Meta, len(top)-1)
	for k, v := range top {
		if k == key {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, fmt.Errorf("parse metadata field %q: %w", k, err)
		}
		meta[k] = val
	}
	return meta, nil
}

// Ping checks connectivity and key validity with a cheap series lookup.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("series_id", "GDP")
	if _, err := c.getJSON(ctx, "series", q); err != nil {
		return fmt.Errorf("fred ping: %w", err)
	}
	return nil
}
