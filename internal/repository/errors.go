package repository

import "errors"

var (
	// ErrUnsupportedLocation indicates no fetcher handles the location's scheme
	ErrUnsupportedLocation = errors.New("unsupported image location")

	// ErrRepositoryUnavailable indicates the backing store is not configured
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
