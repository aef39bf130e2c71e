package repository

import (
	"context"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage retrieves the encoded bytes of the image at location
	FetchImage(ctx context.Context, location string) ([]byte, error)

	// ValidateLocation validates if the provided location is acceptable
	ValidateLocation(location string) error
}

// LocationValidator checks a location before any I/O happens
type LocationValidator interface {
	ValidateLocation(location string) error
}
