package validation

import (
	"net/url"
	"strings"

	apperrors "go-iris-match/internal/errors"
)

// LocationValidator handles image location validation logic. A location is
// either a filesystem path or a URL with an allowed scheme.
type LocationValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// DefaultSchemes lists the schemes a repository can fetch from. Blob
// locations are only included when enableBlob is set.
func DefaultSchemes(enableBlob bool) []string {
	schemes := []string{"file", "http", "https"}
	if enableBlob {
		schemes = append(schemes, "azblob")
	}
	return schemes
}

// NewLocationValidator creates a validator accepting DefaultSchemes on any host
func NewLocationValidator(enableBlob bool) *LocationValidator {
	return &LocationValidator{
		allowedSchemes: DefaultSchemes(enableBlob),
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewLocationValidatorWithOptions creates a validator with custom options.
// An empty hosts list allows every host.
func NewLocationValidatorWithOptions(schemes []string, hosts []string) *LocationValidator {
	return &LocationValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateLocation validates if the provided location can be fetched
func (v *LocationValidator) ValidateLocation(location string) error {
	if strings.TrimSpace(location) == "" {
		return apperrors.NewValidationError("Location cannot be empty", nil)
	}
	if strings.ContainsRune(location, 0) {
		return apperrors.NewValidationError("Location contains a NUL byte", nil)
	}

	// anything without a scheme separator is a filesystem path
	if !strings.Contains(location, "://") {
		return nil
	}

	parsedURL, err := url.Parse(location)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Scheme == "file" {
		if parsedURL.Path == "" {
			return apperrors.NewValidationError("File URL must have a path", nil)
		}
		return nil
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if parsedURL.Scheme != "azblob" && !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	return nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *LocationValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isHostAllowed checks if the URL host is in the allowed list
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *LocationValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}
