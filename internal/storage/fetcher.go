package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotFound indicates nothing exists at the location
	ErrNotFound = errors.New("image not found")

	// ErrTooLarge indicates the image exceeds the configured byte limit
	ErrTooLarge = errors.New("image exceeds size limit")
)

// ImageFetcher returns the encoded bytes of the image at a location.
type ImageFetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// readLimited reads r fully, failing with ErrTooLarge past maxBytes.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, maxBytes)
	}
	return data, nil
}
