// Package scrape walks the paginated tender listings site: listing pages
// are scanned for cards flagged NEW, each new card's detail page is
// fetched and handed to the extraction engine, and the crawl stops on the
// first page that contributes nothing new.
package scrape

import (
	"bytes"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tenderwatch/crawler/normalize"
	"github.com/tenderwatch/crawler/tender"
)

// Selectors tuned to the origin site's markup.
const (
	sectionSelector   = "section.bg-light"
	cardSelector      = "div.card.w-100.mb-2.tender"
	newBadgeSelector  = "span.badge.badge-danger.card-badge"
	titleSelector     = "h3"
	detailTabSelector = "div.tab-pane.fade.active.show"
)

// Structure signals: both terminate pagination without being crawl
// errors, but are kept distinct for logging.
var (
	ErrSectionNotFound = errors.New("tender section not found")
	ErrCardsNotFound   = errors.New("no tender cards found")
	ErrTabNotFound     = errors.New("details tab not found")
)

// ParseListing extracts stubs for the cards flagged NEW on one listing
// page. Card hrefs are resolved against baseURL; cards whose link has no
// usable URL are dropped silently. newSeen counts every NEW badge on the
// page, dropped cards included, so the pagination decision keys on the
// badge and not on link quality.
func ParseListing(body []byte, baseURL string) (stubs []tender.Stub, newSeen int, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}

	section := doc.Find(sectionSelector).First()
	if section.Length() == 0 {
		return nil, 0, ErrSectionNotFound
	}

	cards := section.Find(cardSelector)
	if cards.Length() == 0 {
		return nil, 0, ErrCardsNotFound
	}

	cards.Each(func(i int, card *goquery.Selection) {
		badge := card.Find(newBadgeSelector)
		// The badge token is matched case-sensitively; "New" styling
		// variants do not count.
		if badge.Length() == 0 || !strings.Contains(badge.Text(), "NEW") {
			return
		}

		newSeen++

		link := card.Find("a").First()
		if link.Length() == 0 {
			return
		}

		href, _ := link.Attr("href")
		detailURL := resolveURL(baseURL, href)
		if detailURL == "" {
			return
		}

		stubs = append(stubs, tender.Stub{
			Title: normalize.Clean(link.Text()),
			URL:   detailURL,
			New:   true,
		})
	})

	return stubs, newSeen, nil
}

// resolveURL joins href against base the way a browser would. An empty or
// unparseable href yields "".
func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}

	b, err := url.Parse(base)
	if err != nil {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return b.ResolveReference(ref).String()
}
