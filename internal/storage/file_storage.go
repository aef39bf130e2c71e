package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// FileFetcher reads images from the local filesystem.
type FileFetcher struct {
	maxBytes int64
}

// NewFileFetcher creates a filesystem fetcher that refuses files over maxBytes.
func NewFileFetcher(maxBytes int64) *FileFetcher {
	return &FileFetcher{maxBytes: maxBytes}
}

// Fetch accepts a plain path or a file:// URL.
func (f *FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := LocalPath(location)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > f.maxBytes {
		return nil, fmt.Errorf("%w (%d > %d bytes)", ErrTooLarge, info.Size(), f.maxBytes)
	}

	return readLimited(file, f.maxBytes)
}

// LocalPath resolves a file:// URL to a path; other strings pass through.
func LocalPath(location string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(location), "file://") {
		return location, nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid file URL: %w", err)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("file URL host %q is not local", u.Host)
	}
	if u.Path == "" {
		return "", errors.New("file URL has no path")
	}
	return u.Path, nil
}
