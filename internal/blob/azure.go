// Package blob wraps the Azure Blob Storage container that holds the source
// documents.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// Store is a thin client for one storage container.
type Store struct {
	client    *azblob.Client
	container string
}

// Config configures the container client. The connection string is read from
// the named environment variable; the container name falls back to a default
// when its variable is unset.
type Config struct {
	ConnectionStringEnv string
	ContainerEnv        string
	DefaultContainer    string
}

// NewStore creates a container client from the environment-resolved
// configuration.
func NewStore(cfg Config) (*Store, error) {
	connStr := os.Getenv(cfg.ConnectionStringEnv)
	if connStr == "" {
		return nil, fmt.Errorf("missing connection string in env %s", cfg.ConnectionStringEnv)
	}
	container := os.Getenv(cfg.ContainerEnv)
	if container == "" {
		container = cfg.DefaultContainer
	}
	if container == "" {
		container = "health-docs"
	}
	client, err := azblob.NewClientFromConnectionString(connStr, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return &Store{client: client, container: container}, nil
}

// Container returns the configured container name.
func (s *Store) Container() string { return s.container }

// Upload stores the blob under name, overwriting any existing blob.
func (s *Store) Upload(ctx context.Context, name string, data []byte) error {
	if _, err := s.client.UploadBuffer(ctx, s.container, name, data, nil); err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	return nil
}

// ListPDFs returns the names of all PDF blobs in the container.
func (s *Store) ListPDFs(ctx context.Context) ([]string, error) {
	var names []string
	pager := s.client.NewListBlobsFlatPager(s.container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing blobs in %s: %w", s.container, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			if strings.HasSuffix(strings.ToLower(*item.Name), ".pdf") {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

// Download fetches the named blob's content.
func (s *Store) Download(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", name, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}
