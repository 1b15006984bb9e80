package scrape

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	pages map[string][]byte
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Get(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)

	if err := f.errs[url]; err != nil {
		return nil, err
	}

	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("error status code:%d", 404)
	}

	return body, nil
}

func newTestScraper(f *fakeFetcher, maxPages int) *Scraper {
	return NewScraper(
		WithBaseURL(baseURL),
		WithMaxPages(maxPages),
		WithWaitBounds(0, 0),
		WithFetcher(f),
	)
}

func TestRunStopsOnFirstPageWithoutNewCards(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string][]byte{
			baseURL + "?page=1": listingPage(
				newCard("/tenders/101", "First"),
				newCard("/tenders/102", "Second"),
				oldCard("/tenders/100", "Seen before"),
			),
			baseURL + "?page=2": listingPage(
				oldCard("/tenders/99", "Also seen"),
			),
			"http://site.test/tenders/101": detailPage("First", "Department: Health"),
			"http://site.test/tenders/102": detailPage("Second", "Department: Transport"),
		},
	}

	s := newTestScraper(f, 5)
	records, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "First", records[0].Title)
	assert.Equal(t, "Health", records[0].Department)
	assert.Equal(t, "Second", records[1].Title)
	assert.True(t, records[0].New)

	// Page 2 is fetched, contributes nothing new, and no page-2 card
	// details are requested.
	assert.Equal(t, []string{
		baseURL + "?page=1",
		"http://site.test/tenders/101",
		"http://site.test/tenders/102",
		baseURL + "?page=2",
	}, f.calls)
}

func TestRunHonoursPageCeiling(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]byte{}}
	// Every page reports one new card, so only the ceiling can stop the
	// crawl.
	for page := 1; page <= 10; page++ {
		card := newCard(fmt.Sprintf("/tenders/%d", page), fmt.Sprintf("Tender %d", page))
		f.pages[fmt.Sprintf("%s?page=%d", baseURL, page)] = listingPage(card)
		f.pages[fmt.Sprintf("http://site.test/tenders/%d", page)] = detailPage("T", "Department: X")
	}

	s := newTestScraper(f, 3)
	records, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	listingFetches := 0
	for _, call := range f.calls {
		if call == baseURL+"?page=1" || call == baseURL+"?page=2" ||
			call == baseURL+"?page=3" || call == baseURL+"?page=4" {
			listingFetches++
		}
	}
	assert.Equal(t, 3, listingFetches)
}

func TestRunCapsRequestedPagesAtCeiling(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]byte{
		baseURL + "?page=1": listingPage(oldCard("/tenders/1", "Old")),
	}}

	s := newTestScraper(f, 1)
	records, err := s.Run(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, []string{baseURL + "?page=1"}, f.calls)
}

func TestRunListingTransportErrorReturnsPartialResults(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string][]byte{
			baseURL + "?page=1":            listingPage(newCard("/tenders/101", "First")),
			"http://site.test/tenders/101": detailPage("First", "Department: Health"),
		},
		errs: map[string]error{
			baseURL + "?page=2": errors.New("connection refused"),
		},
	}

	s := newTestScraper(f, 5)
	records, err := s.Run(context.Background(), 0)

	require.Error(t, err)
	// Records crawled before the failure are still returned.
	require.Len(t, records, 1)
	assert.Equal(t, "First", records[0].Title)
}

func TestRunDetailTransportErrorYieldsPartialRecord(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string][]byte{
			baseURL + "?page=1": listingPage(newCard("/tenders/101", "Unreachable")),
			baseURL + "?page=2": listingPage(oldCard("/tenders/1", "Old")),
		},
		errs: map[string]error{
			"http://site.test/tenders/101": errors.New("timeout"),
		},
	}

	s := newTestScraper(f, 5)
	records, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Title and URL survive; everything else is empty.
	assert.Equal(t, "Unreachable", records[0].Title)
	assert.Equal(t, "http://site.test/tenders/101", records[0].URL)
	assert.True(t, records[0].New)
	assert.Empty(t, records[0].Department)
	assert.Empty(t, records[0].BidNumber)
}

func TestRunDetailStructureMissingYieldsEmptyFields(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string][]byte{
			baseURL + "?page=1":            listingPage(newCard("/tenders/101", "Odd page")),
			baseURL + "?page=2":            listingPage(oldCard("/tenders/1", "Old")),
			"http://site.test/tenders/101": []byte(`<html><body><p>unexpected markup</p></body></html>`),
		},
	}

	s := newTestScraper(f, 5)
	records, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "Odd page", records[0].Title)
	assert.Empty(t, records[0].Department)
}

func TestRunContinuesPastPageOfUnlinkedNewCards(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string][]byte{
			// Page 1 carries a new badge but its card has no usable link;
			// pagination must not stop there.
			baseURL + "?page=1":            listingPage(newCard("", "No link target")),
			baseURL + "?page=2":            listingPage(newCard("/tenders/201", "Linked")),
			baseURL + "?page=3":            listingPage(oldCard("/tenders/1", "Old")),
			"http://site.test/tenders/201": detailPage("Linked", "Department: Health"),
		},
	}

	s := newTestScraper(f, 5)
	records, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "Linked", records[0].Title)
	assert.Contains(t, f.calls, baseURL+"?page=3")
}

func TestRunMissingListingStructureStopsCleanly(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string][]byte{
			baseURL + "?page=1": []byte(`<html><body><div>redesigned site</div></body></html>`),
		},
	}

	s := newTestScraper(f, 5)
	records, err := s.Run(context.Background(), 0)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRunDetailTitleOverridesStubTitle(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string][]byte{
			baseURL + "?page=1":            listingPage(newCard("/tenders/101", "Card title")),
			baseURL + "?page=2":            listingPage(oldCard("/tenders/1", "Old")),
			"http://site.test/tenders/101": detailPage("Full detail title", "Department: Health"),
		},
	}

	s := newTestScraper(f, 5)
	records, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "Full detail title", records[0].Title)
}

func TestDelayRespectsContextCancellation(t *testing.T) {
	s := NewScraper(WithWaitBounds(time.Hour, 2*time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		s.delay(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("delay did not observe context cancellation")
	}
}
