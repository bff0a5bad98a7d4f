package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/mediashim/internal/config"
	"github.com/iconidentify/mediashim/internal/domain"
)

// HTTPFetcher implements Fetcher using a single HTTP GET per call.
type HTTPFetcher struct {
	client          *http.Client
	userAgent       string
	allowedPrefixes []string
	maxBodySize     int64
}

// NewHTTPFetcher creates a new HTTP-based media fetcher.
func NewHTTPFetcher(cfg config.ProxyConfig) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSHandshakeTimeout = 10 * time.Second

	prefixes := make([]string, 0, len(cfg.AllowedPrefixes))
	for _, p := range cfg.AllowedPrefixes {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			// Zero means no overall deadline
			Timeout: cfg.Timeout,
		},
		userAgent:       cfg.UserAgent,
		allowedPrefixes: prefixes,
		maxBodySize:     cfg.MaxBodySize,
	}
}

// Allowed reports whether url passes the prefix allowlist.
// An empty allowlist admits every URL.
func (f *HTTPFetcher) Allowed(url string) bool {
	if len(f.allowedPrefixes) == 0 {
		return true
	}
	for _, p := range f.allowedPrefixes {
		if strings.HasPrefix(url, p) {
			return true
		}
	}
	return false
}

// Fetch performs one GET against url and reads the full body into memory.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*domain.FetchResult, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, domain.ErrEmptyURL
	}
	if !f.Allowed(url) {
		return nil, fmt.Errorf("%w: %s", domain.ErrURLNotAllowed, url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrFetchFailed, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if f.maxBodySize > 0 {
		if resp.ContentLength > f.maxBodySize {
			return nil, fmt.Errorf("%w: content length %s exceeds %s", domain.ErrBodyTooLarge,
				humanize.IBytes(uint64(resp.ContentLength)), humanize.IBytes(uint64(f.maxBodySize)))
		}
		body = io.LimitReader(resp.Body, f.maxBodySize+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReadBodyFailed, err)
	}
	if f.maxBodySize > 0 && int64(len(data)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: body exceeds %s", domain.ErrBodyTooLarge, humanize.IBytes(uint64(f.maxBodySize)))
	}

	return &domain.FetchResult{
		URL:         url,
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}
