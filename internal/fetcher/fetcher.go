// Package fetcher downloads the source datasets over HTTP with retry and
// per-host rate limiting.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote datasets.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)

	// DownloadIfAbsent fetches the URL to path unless a non-empty file
	// already exists there. Returns true when a download happened.
	DownloadIfAbsent(ctx context.Context, url string, path string) (bool, error)
}
