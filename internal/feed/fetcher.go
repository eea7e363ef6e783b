package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/pders01/podfeed/internal/config"
)

const acceptHeader = "application/rss+xml, application/xml, text/xml;q=0.9, */*;q=0.8"

// Fetcher performs one GET per call. It never retries.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	readTimeout  time.Duration
	maxBodyBytes int64
	limiter      *rate.Limiter
}

type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the transport built from the config. The read
// timeout still bounds the wait for response headers and every body read;
// the connect timeout is the injected client's own concern.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithLimiter throttles outgoing requests.
func WithLimiter(l *rate.Limiter) FetcherOption {
	return func(f *Fetcher) { f.limiter = l }
}

func NewFetcher(cfg *config.FeedConfig, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:       newHTTPClient(cfg.ConnectTimeout),
		userAgent:    cfg.UserAgent,
		readTimeout:  cfg.ReadTimeout,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	if cfg.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// newHTTPClient bounds connection setup only. Fetch enforces the read timeout
// itself so that injected clients get it too.
func newHTTPClient(connectTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout: connectTimeout,
			MaxIdleConns:        20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Fetch issues the request and returns the response body. The caller must
// close it. Every failure is a *TransportError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{URL: url, Err: err}
		}
	}

	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, &TransportError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", acceptHeader)

	var headerExpired atomic.Bool
	var headerTimer *time.Timer
	if f.readTimeout > 0 {
		headerTimer = time.AfterFunc(f.readTimeout, func() {
			headerExpired.Store(true)
			cancel()
		})
	}

	resp, err := f.client.Do(req)
	if headerTimer != nil {
		headerTimer.Stop()
	}
	if headerExpired.Load() {
		if err == nil {
			resp.Body.Close()
		}
		cancel()
		return nil, &TransportError{URL: url, Err: fmt.Errorf("%w: no response headers within %s", ErrReadTimeout, f.readTimeout)}
	}
	if err != nil {
		cancel()
		return nil, &TransportError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cancel()
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	var body io.ReadCloser = resp.Body
	if f.maxBodyBytes > 0 {
		body = http.MaxBytesReader(nil, body, f.maxBodyBytes)
	}
	stream := newIdleTimeoutBody(body, f.readTimeout, cancel)

	br := bufio.NewReader(stream)
	if _, err := br.Peek(1); err != nil {
		stream.Close()
		if errors.Is(err, io.EOF) {
			err = ErrEmptyBody
		}
		return nil, &TransportError{URL: url, Err: err}
	}

	return &bodyStream{Reader: br, closer: stream}, nil
}

type bodyStream struct {
	io.Reader
	closer io.Closer
}

func (b *bodyStream) Close() error { return b.closer.Close() }

// idleTimeoutBody cancels the request when no Read completes within d.
type idleTimeoutBody struct {
	body    io.ReadCloser
	d       time.Duration
	cancel  context.CancelFunc
	timer   *time.Timer
	expired atomic.Bool
	once    sync.Once
}

func newIdleTimeoutBody(body io.ReadCloser, d time.Duration, cancel context.CancelFunc) *idleTimeoutBody {
	b := &idleTimeoutBody{body: body, d: d, cancel: cancel}
	if d > 0 {
		b.timer = time.AfterFunc(d, func() {
			b.expired.Store(true)
			cancel()
		})
	}
	return b
}

func (b *idleTimeoutBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if b.expired.Load() {
		return n, fmt.Errorf("%w: no data for %s", ErrReadTimeout, b.d)
	}
	if b.timer != nil && err == nil {
		b.timer.Reset(b.d)
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return n, fmt.Errorf("response body exceeds %d bytes", maxErr.Limit)
	}
	return n, err
}

func (b *idleTimeoutBody) Close() error {
	var err error
	b.once.Do(func() {
		if b.timer != nil {
			b.timer.Stop()
		}
		err = b.body.Close()
		b.cancel()
	})
	return err
}
