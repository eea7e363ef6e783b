package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pders01/podfeed/internal/config"
	"github.com/pders01/podfeed/internal/debuglog"
)

const maxResponseBytes = 5 << 20

var ErrEmptyTerm = errors.New("search term cannot be empty")

// StatusError is returned when the catalog answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog search failed: %s", e.Status)
}

// Client queries the iTunes search API.
type Client struct {
	http      *http.Client
	baseURL   *url.URL
	media     string
	limit     int
	userAgent string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

func NewClient(cfg *config.CatalogConfig, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: base,
		media:   cfg.Media,
		limit:   cfg.Limit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) searchURL(term string) string {
	q := url.Values{}
	q.Set("term", term)
	if c.media != "" {
		q.Set("media", c.media)
	}
	if c.limit > 0 {
		q.Set("limit", strconv.Itoa(c.limit))
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: "search"})
	u.RawQuery = q.Encode()
	return u.String()
}

// Search returns the catalog results for term in the order the catalog
// ranks them.
func (c *Client) Search(ctx context.Context, term string) ([]Item, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(term), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	debuglog.Debugf("catalog search %q", term)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding catalog response: %w", err)
	}

	debuglog.Infof("catalog search %q returned %d results", term, len(body.Results))
	return body.Results, nil
}
