package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// remoteObjectPrefix is where result archives live inside the bucket.
const remoteObjectPrefix = "experiments/"

// uploader and downloader are the transfer surfaces needed from the remote
// client, kept narrow for testability.
type uploader interface {
	UploadFrom(ctx context.Context, object, localPath string) error
}

type downloader interface {
	DownloadTo(ctx context.Context, object, localPath string) error
}

// objectName maps an experiment content hash to its archive object.
func objectName(hash string) string {
	return remoteObjectPrefix + hash + ".zip"
}

// Store zips experimentDir and uploads it under the experiment's content
// hash. The local zip file is removed after a successful upload.
func Store(ctx context.Context, blobs uploader, experimentDir, hash string) error {
	zipPath := filepath.Join(os.TempDir(), hash+".zip")
	if err := ZipDir(experimentDir, zipPath); err != nil {
		return err
	}
	defer os.Remove(zipPath)

	if err := blobs.UploadFrom(ctx, objectName(hash), zipPath); err != nil {
		return fmt.Errorf("failed to upload result archive: %w", err)
	}
	return nil
}

// Retrieve downloads the archive stored under hash and unpacks it into
// destDir, cleaning up the intermediate zip file.
func Retrieve(ctx context.Context, blobs downloader, hash, destDir string) error {
	zipPath := filepath.Join(os.TempDir(), hash+".zip")
	if err := blobs.DownloadTo(ctx, objectName(hash), zipPath); err != nil {
		return fmt.Errorf("failed to download result archive: %w", err)
	}
	defer os.Remove(zipPath)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	return Unzip(zipPath, destDir)
}
