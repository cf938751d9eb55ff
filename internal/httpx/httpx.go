package httpx

import (
	"context"
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when a request carries none.
const DefaultUserAgent = "coffeeinvest/1.0"

// Client wraps http.Client with shared transport settings, default headers
// and retries for throttled or failing upstreams.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string

	// MaxRetries bounds extra attempts on 429 and 5xx for bodiless requests.
	MaxRetries int
	// Backoff is the first retry delay, doubled on every attempt.
	Backoff time.Duration
}

func New(timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}
	return &Client{
		HTTP:       &http.Client{Timeout: timeout, Transport: transport},
		UserAgent:  DefaultUserAgent,
		MaxRetries: 2,
		Backoff:    250 * time.Millisecond,
	}
}

// Do sends req bound to ctx. Requests without a body are retried with
// exponential backoff on 429 and 5xx; the last response is returned as is.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	retries := c.MaxRetries
	if req.Body != nil && req.Body != http.NoBody {
		retries = 0
	}
	for attempt := 0; ; attempt++ {
		resp, err := c.HTTP.Do(req)
		if err != nil || attempt >= retries || !retryable(resp.StatusCode) {
			return resp, err
		}
		resp.Body.Close()

		t := time.NewTimer(c.Backoff << attempt)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}
