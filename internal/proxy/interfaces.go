package proxy

import (
	"context"

	"github.com/iconidentify/mediashim/internal/domain"
)

// Fetcher retrieves remote media on behalf of a caller.
type Fetcher interface {
	// Fetch performs a single GET and returns the whole response body.
	// The upstream status code is reported but never treated as an error.
	Fetch(ctx context.Context, url string) (*domain.FetchResult, error)
}
