// internal/common/http/client.go
package http

import (
	"net/http"
	"time"
)

const DefaultUserAgent = "tile-intent-workers"

// Client is the outbound client for third-party APIs. It satisfies the Do-only
// interfaces SDKs accept, e.g. go-openai's HTTPDoer.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient bounds every request by timeout; zero leaves it to the request context.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}
