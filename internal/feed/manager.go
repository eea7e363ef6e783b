package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pders01/podfeed/internal/config"
	"github.com/pders01/podfeed/internal/debuglog"
)

// SubscriptionLookup reports whether the user subscribed to a feed URL.
type SubscriptionLookup interface {
	IsSubscribed(url string) (bool, error)
}

// Service runs fetch-then-parse for the front end. Calls share no state
// besides the transport, so a Service is safe for concurrent use.
type Service struct {
	fetcher       *Fetcher
	parser        *Parser
	maxConcurrent int

	mu   sync.RWMutex
	subs SubscriptionLookup
}

func NewService(cfg *config.FeedConfig, opts ...FetcherOption) *Service {
	return NewServiceWith(NewFetcher(cfg, opts...), NewParser(), cfg.MaxConcurrent)
}

func NewServiceWith(fetcher *Fetcher, parser *Parser, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Service{
		fetcher:       fetcher,
		parser:        parser,
		maxConcurrent: maxConcurrent,
	}
}

// SetSubscriptions makes returned feeds carry the stored subscription flag.
func (s *Service) SetSubscriptions(subs SubscriptionLookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = subs
}

// RequestFeed returns the parsed feed, or nil when the feed could not be
// fetched or parsed. The reason is logged, never returned.
func (s *Service) RequestFeed(ctx context.Context, url string) *Feed {
	f, err := s.Fetch(ctx, url)
	if err != nil {
		return nil
	}
	return f
}

// Fetch is RequestFeed with the failure kept: a *TransportError or a
// *MalformedDocumentError, or a context error on cancellation.
func (s *Service) Fetch(ctx context.Context, url string) (*Feed, error) {
	log := debuglog.WithFields(map[string]interface{}{
		"url":        url,
		"request_id": uuid.NewString(),
	})

	f, err := s.fetchAndParse(ctx, url)
	outcome := Classify(f, err)
	switch outcome {
	case OutcomeOK:
		log.Debugf("parsed feed with %d episodes", f.EpisodeCount())
	case OutcomeNoEpisodes:
		log.Infof("feed has no episodes")
	default:
		log.With("outcome", outcome.String()).Warnf("no feed available: %v", err)
		return nil, err
	}

	return s.markSubscribed(f, url, log), nil
}

func (s *Service) fetchAndParse(ctx context.Context, url string) (*Feed, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	f, err := s.parser.Parse(body, WithSourceURL(url))
	if err != nil {
		if errors.Is(err, ErrMalformedDocument) {
			return nil, err
		}
		// The stream broke mid-read: still a transport problem.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &TransportError{URL: url, Err: ctxErr}
		}
		return nil, &TransportError{URL: url, Err: err}
	}
	return f, nil
}

func (s *Service) markSubscribed(f *Feed, url string, log *debuglog.FieldLogger) *Feed {
	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()
	if subs == nil {
		return f
	}

	subscribed, err := subs.IsSubscribed(url)
	if err != nil {
		log.Warnf("subscription lookup failed: %v", err)
		return f
	}
	return f.WithSubscribed(subscribed)
}

// Result is the outcome of one URL in a batch.
type Result struct {
	URL  string
	Feed *Feed
	Err  error
}

func (r Result) Outcome() Outcome {
	return Classify(r.Feed, r.Err)
}

// FetchAll fetches every URL with at most maxConcurrent requests in flight.
// Results keep the order of urls; each URL gets its own Feed.
func (s *Service) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, u := range urls {
		g.Go(func() error {
			f, err := s.Fetch(ctx, u)
			results[i] = Result{URL: u, Feed: f, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
