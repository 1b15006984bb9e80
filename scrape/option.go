package scrape

import (
	"time"

	"go.uber.org/zap"

	"github.com/tenderwatch/crawler/fetch"
	"github.com/tenderwatch/crawler/limiter"
)

type options struct {
	baseURL  string
	maxPages int
	waitMin  time.Duration
	waitMax  time.Duration
	fetcher  fetch.Fetcher
	limit    limiter.RateLimiter
	logger   *zap.Logger
}

var defaultOptions = options{
	baseURL:  "https://easytenders.co.za/tenders",
	maxPages: 5,
	waitMin:  1 * time.Second,
	waitMax:  3 * time.Second,
	logger:   zap.NewNop(),
}

type Option func(opts *options)

func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithMaxPages sets the hard ceiling on listing pages scanned in one
// invocation.
func WithMaxPages(maxPages int) Option {
	return func(opts *options) {
		opts.maxPages = maxPages
	}
}

// WithWaitBounds sets the randomized delay inserted between consecutive
// detail fetches.
func WithWaitBounds(min, max time.Duration) Option {
	return func(opts *options) {
		opts.waitMin = min
		opts.waitMax = max
	}
}

func WithFetcher(f fetch.Fetcher) Option {
	return func(opts *options) {
		opts.fetcher = f
	}
}

func WithLimiter(limit limiter.RateLimiter) Option {
	return func(opts *options) {
		opts.limit = limit
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}
