package factory

import (
	"fmt"

	"go-iris-match/internal/config"
	"go-iris-match/internal/repository"
	"go-iris-match/internal/storage"
	"go-iris-match/internal/vision"
	"go-iris-match/pkg/validation"
)

// BackendType represents the available vision backends
type BackendType string

const (
	// NativeBackend is the pure-Go implementation
	NativeBackend BackendType = config.BackendNative
	// OpenCVBackend requires a build with the gocv tag
	OpenCVBackend BackendType = config.BackendOpenCV
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// LocalStorage for local file system
	LocalStorage StorageType = "local"
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// VisionFactory creates vision backends
type VisionFactory interface {
	CreatePrimitives(backendType BackendType) (vision.Primitives, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

// visionFactory implements VisionFactory
type visionFactory struct{}

// NewVisionFactory creates a new vision factory
func NewVisionFactory() VisionFactory {
	return &visionFactory{}
}

// CreatePrimitives creates the backend with the given name
func (f *visionFactory) CreatePrimitives(backendType BackendType) (vision.Primitives, error) {
	switch backendType {
	case NativeBackend:
		return vision.NewNative(), nil
	case OpenCVBackend:
		return vision.NewOpenCV()
	default:
		return nil, fmt.Errorf("unsupported vision backend: %s", backendType)
	}
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case LocalStorage:
		return storage.NewFileFetcher(f.cfg.MaxImageBytes), nil
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(f.cfg.FetchTimeout, f.cfg.MaxImageBytes), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
		return storage.NewAzureBlobFetcher(f.cfg.AzureAccountName, f.cfg.AzureAccountKey,
			f.cfg.AzureBlobEndpoint, f.cfg.MaxImageBytes)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	VisionFactory  VisionFactory
	StorageFactory StorageFactory
	cfg            *config.Config
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		VisionFactory:  NewVisionFactory(),
		StorageFactory: NewStorageFactory(cfg),
		cfg:            cfg,
	}
}

// CreateRepository builds a repository serving every location kind the
// configuration allows.
func (f *ComponentFactory) CreateRepository() (*repository.LocationRepository, error) {
	files, err := f.StorageFactory.CreateStorage(LocalStorage)
	if err != nil {
		return nil, err
	}
	web, err := f.StorageFactory.CreateStorage(HTTPStorage)
	if err != nil {
		return nil, err
	}

	validator := validation.NewLocationValidatorWithOptions(
		validation.DefaultSchemes(f.cfg.AzureEnabled()), f.cfg.AllowedHosts)
	repo := repository.NewLocationRepository(validator, files)
	repo.Register("http", web)
	repo.Register("https", web)

	if f.cfg.AzureEnabled() {
		blobs, err := f.StorageFactory.CreateStorage(AzureStorage)
		if err != nil {
			return nil, err
		}
		repo.Register(storage.BlobScheme, blobs)
	}
	return repo, nil
}
