package scrape

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/tenderwatch/crawler/normalize"
)

// ParseDetailPage locates the detail container and its active tab and
// returns the page title plus the tab's raw text blob. Line breaks are
// preserved in the blob: the extractors rely on them as field boundaries,
// so whitespace collapsing is deferred to the extraction stage. A missing
// container or tab is reported through the structure sentinels and leaves
// both values empty; callers treat that as a partial record, not a crawl
// failure.
func ParseDetailPage(body []byte) (title, blob string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}

	section := doc.Find(sectionSelector).First()
	if section.Length() == 0 {
		return "", "", ErrSectionNotFound
	}

	tab := section.Find(detailTabSelector).First()
	if tab.Length() == 0 {
		return "", "", ErrTabNotFound
	}

	title = normalize.Clean(section.Find(titleSelector).First().Text())

	return title, lineText(tab), nil
}

// lineText renders a selection as plain text with every DOM text node on
// its own line, the line-break-preserving equivalent of Selection.Text.
func lineText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}

	return strings.Join(parts, "\n")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		*parts = append(*parts, n.Data)
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
