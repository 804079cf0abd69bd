package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBlobs keeps uploaded archives in memory, keyed by object name.
type fakeBlobs struct {
	objects map[string][]byte
	err     error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (f *fakeBlobs) UploadFrom(ctx context.Context, object, localPath string) error {
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.objects[object] = data
	return nil
}

func (f *fakeBlobs) DownloadTo(ctx context.Context, object, localPath string) error {
	if f.err != nil {
		return f.err
	}
	data, ok := f.objects[object]
	if !ok {
		return errors.New("object not found")
	}
	return os.WriteFile(localPath, data, 0o644)
}

func TestStoreRetrieveRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	writeTree(t, srcDir, map[string]string{
		"log.txt":              "epoch 1 done",
		"checkpoints/final.pt": "weights",
	})

	blobs := newFakeBlobs()
	ctx := context.Background()
	hash := "d41d8cd98f00b204e9800998ecf8427e"

	require.NoError(t, Store(ctx, blobs, srcDir, hash))
	assert.Contains(t, blobs.objects, "experiments/"+hash+".zip")

	// Local zip is cleaned up after upload
	_, err := os.Stat(filepath.Join(os.TempDir(), hash+".zip"))
	assert.True(t, os.IsNotExist(err))

	destDir := filepath.Join(t.TempDir(), "retrieved")
	require.NoError(t, Retrieve(ctx, blobs, hash, destDir))
	data, err := os.ReadFile(filepath.Join(destDir, "log.txt"))
	require.NoError(t, err)
	assert.Equal(t, "epoch 1 done", string(data))
	data, err = os.ReadFile(filepath.Join(destDir, "checkpoints", "final.pt"))
	require.NoError(t, err)
	assert.Equal(t, "weights", string(data))
}

func TestStoreUploadFailure(t *testing.T) {
	srcDir := t.TempDir()
	writeTree(t, srcDir, map[string]string{"log.txt": "x"})

	blobs := newFakeBlobs()
	blobs.err = errors.New("bucket unavailable")
	err := Store(context.Background(), blobs, srcDir, "deadbeef")
	assert.ErrorContains(t, err, "failed to upload result archive")
}

func TestRetrieveMissingArchive(t *testing.T) {
	blobs := newFakeBlobs()
	err := Retrieve(context.Background(), blobs, "unknown", t.TempDir())
	assert.ErrorContains(t, err, "failed to download result archive")
}
