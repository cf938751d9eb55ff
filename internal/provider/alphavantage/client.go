// Package alphavantage is a small client for the Alpha Vantage time series API.
package alphavantage

import (
	"errors"
	"net/http"
	"net/url"
)

const defaultBaseURL = "https://www.alphavantage.co"

// ErrMissingAPIKey is returned when the client is built without a key.
var ErrMissingAPIKey = errors.New("alphavantage: api key is required")

// HTTPClient is the transport the client sends requests through.
//
//go:generate mockgen -package=alphavantage_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the /query endpoint. Every request carries the apikey
// parameter plus any extra headers set through options.
type Client struct {
	baseURL string
	http    HTTPClient
	header  http.Header
	query   url.Values
}

// Option configures a Client, either at construction or for a single call.
type Option func(*Client)

// WithAPIKey sets the key Alpha Vantage authenticates with.
// https://www.alphavantage.co/documentation/
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if key == "" {
			c.query.Del("apikey")
			return
		}
		c.query.Set("apikey", key)
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.http = hc }
}

// WithHeader adds header values on top of those already set.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, v := range values {
				c.header.Add(key, v)
			}
		}
	}
}

// New builds a client from opts. WithAPIKey is required.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    http.DefaultClient,
		header:  http.Header{},
		query:   url.Values{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.query.Get("apikey") == "" {
		return nil, ErrMissingAPIKey
	}
	return c, nil
}

// with returns a copy of c with per-call options applied.
func (c *Client) with(opts []Option) *Client {
	cp := &Client{
		baseURL: c.baseURL,
		http:    c.http,
		header:  c.header.Clone(),
		query:   url.Values{},
	}
	for k, v := range c.query {
		cp.query[k] = append([]string(nil), v...)
	}
	for _, opt := range opts {
		opt(cp)
	}
	return cp
}
