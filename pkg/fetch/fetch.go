// Package fetch implements the HTTP client shared by all providers and
// the concurrent tile download batches built on top of it.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/streetlevel/streetlevel/pkg/pano"
)

const defaultUserAgent = "streetlevel/1.0"

// Client wraps a connection-reusing http.Client with header injection.
// One Client may be shared across any number of concurrent calls; it is
// never mutated after construction.
type Client struct {
	hc        *http.Client
	userAgent string
	headers   map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHeaders sets additional headers sent with every request, e.g.
// referrers or auth tokens.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) { c.headers = headers }
}

// WithHTTPClient replaces the underlying http.Client. Timeouts and
// retries are the caller's responsibility and belong on this client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// NewClient creates a Client with a pooled transport.
func NewClient(opts ...Option) *Client {
	c := &Client{
		hc: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
			},
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle connections held by the transport.
func (c *Client) Close() {
	c.hc.CloseIdleConnections()
}

func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	return c.hc.Do(req)
}

// Get retrieves the body of a URL. A non-2xx status is an error.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Head reports whether a HEAD request for the URL succeeds.
func (c *Client) Head(ctx context.Context, url string) (bool, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// GetJSON retrieves a URL and unmarshals the response body into v.
// Some provider endpoints wrap their JSON; preprocess, if non-nil, is
// applied to the raw body first.
func (c *Client) GetJSON(ctx context.Context, url string, v any, preprocess func([]byte) []byte) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if preprocess != nil {
		body = preprocess(body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	return nil
}

// GetAll retrieves every URL concurrently and returns the bodies in
// input order. The first failure cancels the remaining requests and
// fails the whole batch; there is no partial result.
func (c *Client) GetAll(ctx context.Context, urls []string) ([][]byte, error) {
	results := make([][]byte, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			data, err := c.Get(ctx, url)
			if err != nil {
				return err
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// DownloadTiles retrieves the raw bytes of every tile in the list,
// keyed by grid coordinate. All tiles are fetched concurrently; any
// failure aborts the batch.
func (c *Client) DownloadTiles(ctx context.Context, tiles []pano.Tile) (map[pano.TileCoord][]byte, error) {
	urls := make([]string, len(tiles))
	for i, t := range tiles {
		urls[i] = t.URL
	}
	data, err := c.GetAll(ctx, urls)
	if err != nil {
		return nil, err
	}
	images := make(map[pano.TileCoord][]byte, len(tiles))
	for i, t := range tiles {
		images[pano.TileCoord{X: t.X, Y: t.Y}] = data[i]
	}
	return images, nil
}

// DownloadTileFaces is DownloadTiles for panoramas whose tiles are
// grouped per cube face. One tile map is returned per input face, in
// input order.
func (c *Client) DownloadTileFaces(ctx context.Context, faces [][]pano.Tile) ([]map[pano.TileCoord][]byte, error) {
	results := make([]map[pano.TileCoord][]byte, len(faces))
	g, ctx := errgroup.WithContext(ctx)
	for i, face := range faces {
		i, face := i, face
		g.Go(func() error {
			images, err := c.DownloadTiles(ctx, face)
			if err != nil {
				return err
			}
			results[i] = images
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
