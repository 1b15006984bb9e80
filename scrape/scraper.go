package scrape

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/tenderwatch/crawler/extract"
	"github.com/tenderwatch/crawler/tender"
)

// Scraper drives one crawl invocation: pages are fetched strictly one at
// a time, detail pages within a page one at a time in card order, so the
// result order is exactly discovery order and the origin server never
// sees parallel requests from a crawl.
type Scraper struct {
	options
}

func NewScraper(opts ...Option) *Scraper {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	s := &Scraper{}
	s.options = options

	return s
}

// Run walks listing pages starting at 1 and returns the records for every
// card flagged NEW, in discovery order. maxPages caps the pages scanned
// for this invocation and is itself capped by the configured ceiling;
// values <= 0 select the ceiling. The crawl stops cleanly on the first
// page with no new cards or with the expected structure missing. A
// transport failure on a listing page aborts the crawl and returns the
// records accumulated so far alongside the error; an empty result with a
// nil error is a valid outcome.
func (s *Scraper) Run(ctx context.Context, maxPages int) ([]tender.Record, error) {
	if maxPages <= 0 || maxPages > s.maxPages {
		maxPages = s.maxPages
	}

	defer func() {
		if c, ok := s.fetcher.(interface{ CloseIdleConnections() }); ok {
			c.CloseIdleConnections()
		}
	}()

	var results []tender.Record
	fetchedDetail := false

	for page := 1; page <= maxPages; page++ {
		pageURL := fmt.Sprintf("%s?page=%d", s.baseURL, page)
		s.logger.Info("fetching listing page",
			zap.Int("page", page),
			zap.String("url", pageURL))

		body, err := s.fetch(ctx, pageURL)
		if err != nil {
			s.logger.Error("listing page fetch failed",
				zap.Int("page", page),
				zap.Error(err))

			return results, fmt.Errorf("fetch listing page %d: %w", page, err)
		}

		stubs, newSeen, err := ParseListing(body, s.baseURL)
		if err != nil {
			// Structure assumption broken; stop without error.
			s.logger.Info("listing structure missing, stopping",
				zap.Int("page", page),
				zap.Error(err))

			break
		}

		if newSeen == 0 {
			// The site lists newest first, so the first page without new
			// badges ends the crawl. A page whose new cards all lacked a
			// usable link keeps pagination going.
			s.logger.Info("no new tenders on page, stopping",
				zap.Int("page", page))

			break
		}

		for _, stub := range stubs {
			if fetchedDetail {
				s.delay(ctx)
			}

			results = append(results, s.scrapeDetail(ctx, stub))
			fetchedDetail = true
		}
	}

	if len(results) == 0 {
		s.logger.Info("no new tenders found")
	}

	return results, nil
}

// scrapeDetail fetches and parses one detail page. Failures below the
// crawl boundary are absorbed: a transport error yields a record with
// title and URL only, a missing container yields a record whose detail
// fields are all empty. The record is produced either way.
func (s *Scraper) scrapeDetail(ctx context.Context, stub tender.Stub) tender.Record {
	s.logger.Info("scraping tender details", zap.String("url", stub.URL))

	rec := tender.Record{Title: stub.Title, URL: stub.URL, New: true}

	body, err := s.fetch(ctx, stub.URL)
	if err != nil {
		s.logger.Warn("detail fetch failed",
			zap.String("url", stub.URL),
			zap.Error(err))

		return rec
	}

	title, blob, err := ParseDetailPage(body)
	if err != nil {
		s.logger.Warn("detail structure missing",
			zap.String("url", stub.URL),
			zap.Error(err))

		return rec
	}

	parsed := extract.ParseDetail(blob)
	parsed.URL = stub.URL
	parsed.New = true
	parsed.Title = stub.Title
	if title != "" {
		parsed.Title = title
	}

	return parsed
}

func (s *Scraper) fetch(ctx context.Context, url string) ([]byte, error) {
	if s.limit != nil {
		if err := s.limit.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return s.fetcher.Get(ctx, url)
}

// delay suspends between consecutive detail fetches to bound the request
// rate against the origin server.
func (s *Scraper) delay(ctx context.Context) {
	d := s.waitMin
	if jitter := int64(s.waitMax - s.waitMin); jitter > 0 {
		d += time.Duration(rand.Int63n(jitter))
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
