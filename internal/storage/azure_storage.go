package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// BlobScheme prefixes Azure Blob Storage locations: azblob://<container>/<blob>.
const BlobScheme = "azblob"

// AzureBlobFetcher downloads images from one storage account.
type AzureBlobFetcher struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureBlobFetcher authenticates with a shared key. An empty endpoint
// targets the public blob service of the account.
func NewAzureBlobFetcher(accountName, accountKey, endpoint string, maxBytes int64) (*AzureBlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(endpoint, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &AzureBlobFetcher{client: client, maxBytes: maxBytes}, nil
}

func (s *AzureBlobFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	containerName, blobName, err := ParseBlobLocation(location)
	if err != nil {
		return nil, err
	}

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, containerName, blobName)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	return readLimited(retryReader, s.maxBytes)
}

// ParseBlobLocation splits azblob://<container>/<blob> into its parts.
func ParseBlobLocation(location string) (containerName, blobName string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob location: %w", err)
	}
	if !strings.EqualFold(u.Scheme, BlobScheme) {
		return "", "", fmt.Errorf("blob location must use %s:// (got %q)", BlobScheme, u.Scheme)
	}
	containerName = u.Host
	blobName = strings.TrimPrefix(u.Path, "/")
	if containerName == "" || blobName == "" {
		return "", "", errors.New("blob location needs both a container and a blob name")
	}
	return containerName, blobName, nil
}
