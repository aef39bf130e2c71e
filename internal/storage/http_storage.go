package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const maxFetchAttempts = 3

// HTTPImageFetcher downloads images over HTTP(S) with bounded retries.
type HTTPImageFetcher struct {
	client   *http.Client
	maxBytes int64
	// backoff returns the pause before retry number attempt (1-based)
	backoff func(attempt int) time.Duration
}

// NewHTTPImageFetcher creates an HTTP image fetcher.
func NewHTTPImageFetcher(timeout time.Duration, maxBytes int64) *HTTPImageFetcher {
	transport := &http.Transport{
		// a match downloads at most three images from few hosts
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * time.Second
		},
	}
}

func (h *HTTPImageFetcher) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, image/bmp, image/tiff, */*")
	req.Header.Set("User-Agent", "Go-Iris-Match/1.0")

	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		data, retry, err := h.try(req)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry || attempt == maxFetchAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch cancelled: %w", ctx.Err())
		case <-time.After(h.backoff(attempt)):
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", maxFetchAttempts, lastErr)
}

// try performs one request. retry reports whether a failure is transient.
func (h *HTTPImageFetcher) try(req *http.Request) (data []byte, retry bool, err error) {
	resp, err := h.client.Do(req)
	if err != nil {
		// cancellation is final, network errors are not
		return nil, req.Context().Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := readLimited(resp.Body, h.maxBytes)
		return data, false, err
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: client error: status code %d", ErrNotFound, resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
}
