package repository

import (
	"context"
	"fmt"
	"strings"

	"go-iris-match/internal/logger"
	"go-iris-match/internal/storage"

	"github.com/sirupsen/logrus"
)

// LocationRepository implements ImageRepository by routing each location to
// the fetcher registered for its scheme. Plain paths go to the file fetcher.
type LocationRepository struct {
	validator LocationValidator
	fetchers  map[string]storage.ImageFetcher
}

// NewLocationRepository creates a repository for local files. Register adds
// further schemes.
func NewLocationRepository(validator LocationValidator, files storage.ImageFetcher) *LocationRepository {
	return &LocationRepository{
		validator: validator,
		fetchers: map[string]storage.ImageFetcher{
			"file": files,
		},
	}
}

// Register routes locations with the given scheme to fetcher.
func (r *LocationRepository) Register(scheme string, fetcher storage.ImageFetcher) {
	r.fetchers[strings.ToLower(scheme)] = fetcher
}

// ValidateLocation validates if the provided location is acceptable
func (r *LocationRepository) ValidateLocation(location string) error {
	return r.validator.ValidateLocation(location)
}

// FetchImage validates location and reads it through the matching fetcher.
func (r *LocationRepository) FetchImage(ctx context.Context, location string) ([]byte, error) {
	if err := r.ValidateLocation(location); err != nil {
		return nil, err
	}

	scheme := SchemeOf(location)
	fetcher, ok := r.fetchers[scheme]
	if !ok {
		if scheme == storage.BlobScheme {
			return nil, fmt.Errorf("%w: blob storage credentials not configured", ErrRepositoryUnavailable)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocation, location)
	}

	data, err := fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"location": location,
		"scheme":   scheme,
		"bytes":    len(data),
	}).Debug("Image fetched")
	return data, nil
}

// SchemeOf returns the lower-cased URL scheme of location, or "file" for
// plain paths.
func SchemeOf(location string) string {
	i := strings.Index(location, "://")
	if i <= 0 {
		return "file"
	}
	return strings.ToLower(location[:i])
}
