// Package remote provides best-effort mirroring of the protocol file and
// result archives to Google Cloud Storage.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ErrObjectNotFound marks a remote object that does not exist. On protocol
// pulls this is the expected first-run state, not a failure.
var ErrObjectNotFound = errors.New("remote object not found")

// Client wraps a GCS bucket for object transfer.
type Client struct {
	storageClient *storage.Client
	ProjectID     string
	BucketName    string
}

// NewClient connects to the given bucket. A non-empty credentialsPath
// overrides application-default credentials.
func NewClient(ctx context.Context, projectID, bucketName, credentialsPath string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("credentials file not found at %s", credentialsPath)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &Client{
		storageClient: storageClient,
		ProjectID:     projectID,
		BucketName:    bucketName,
	}, nil
}

// Close releases the underlying storage client.
func (c *Client) Close() error {
	return c.storageClient.Close()
}

// DownloadTo fetches object into localPath. The object is written to a
// temporary sibling and renamed into place, so a failed download leaves any
// prior local file untouched.
func (c *Client) DownloadTo(ctx context.Context, object, localPath string) error {
	reader, err := c.storageClient.Bucket(c.BucketName).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: gs://%s/%s", ErrObjectNotFound, c.BucketName, object)
		}
		return fmt.Errorf("failed to open GCS object %s: %w", object, err)
	}
	defer reader.Close()

	dir := filepath.Dir(localPath)
	tmp, err := os.CreateTemp(dir, ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to download gs://%s/%s: %w", c.BucketName, object, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, localPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", localPath, err)
	}
	return nil
}

// UploadFrom sends the file at localPath to object.
func (c *Client) UploadFrom(ctx context.Context, object, localPath string) error {
	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open the local file %s: %w", localPath, err)
	}
	defer localFile.Close()

	obj := c.storageClient.Bucket(c.BucketName).Object(object)
	writer := obj.NewWriter(ctx)
	writer.ContentType = "application/octet-stream"
	writer.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := io.Copy(writer, localFile); err != nil {
		return fmt.Errorf("failed to copy %s to GCS object %s: %w", localPath, object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", object, err)
	}
	return nil
}
