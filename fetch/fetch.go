// Package fetch wraps outbound HTTP for the crawler: browser-identifying
// headers on every request, bounded timeouts, optional proxy rotation and
// transcoding of non-UTF-8 bodies.
package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tenderwatch/crawler/proxy"
)

// Headers sent on every request, per the origin site's expectations.
const (
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	AcceptLanguage = "en-US,en;q=0.9"
)

type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// NewClient builds the single reusable HTTP client held for the duration
// of one crawl invocation.
func NewClient(timeout time.Duration, p proxy.Func) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if p != nil {
		transport.Proxy = p
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// BrowserFetch issues GETs that look like a desktop browser.
type BrowserFetch struct {
	Client *http.Client
	Logger *zap.Logger
}

func (b *BrowserFetch) Get(ctx context.Context, url string) ([]byte, error) {
	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", AcceptLanguage)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error status code:%d", resp.StatusCode)
	}

	bodyReader := bufio.NewReader(resp.Body)
	e := determineEncoding(bodyReader, b.Logger)
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())

	return io.ReadAll(utf8Reader)
}

// CloseIdleConnections releases the pooled connections when a crawl
// invocation finishes.
func (b *BrowserFetch) CloseIdleConnections() {
	if b.Client != nil {
		b.Client.CloseIdleConnections()
	}
}

func determineEncoding(r *bufio.Reader, logger *zap.Logger) encoding.Encoding {
	bytes, err := r.Peek(1024)
	if err != nil && len(bytes) == 0 {
		if logger != nil {
			logger.Debug("peek body failed", zap.Error(err))
		}

		return unicode.UTF8
	}

	e, _, _ := charset.DetermineEncoding(bytes, "")

	return e
}
