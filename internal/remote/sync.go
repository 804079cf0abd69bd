package remote

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mle-tools/mle-monitor/internal/logger"
)

const (
	// numConnectTries bounds the retry loop of both pull and push.
	numConnectTries = 5
	// attemptTimeout bounds each individual network attempt. A timed-out
	// attempt counts as a failed attempt, not a separate error class.
	attemptTimeout = 20 * time.Second
)

// blobStore is the transfer surface Syncer needs from the GCS client.
// Factored out so tests can substitute an in-memory object store.
type blobStore interface {
	DownloadTo(ctx context.Context, object, localPath string) error
	UploadFrom(ctx context.Context, object, localPath string) error
}

// Syncer mirrors one local file to one remote object with bounded retries.
// Implements the protocol.Remote contract.
type Syncer struct {
	blobs     blobStore
	object    string
	localPath string
	log       *log.Logger
}

// NewSyncer binds a client to the protocol object and its local path.
func NewSyncer(client *Client, object, localPath string) *Syncer {
	return &Syncer{
		blobs:     client,
		object:    object,
		localPath: localPath,
		log:       logger.New("gcs-sync"),
	}
}

// Pull fetches the remote protocol copy. A missing remote object is the
// expected first-run state: the stale local file (if any) is removed so a
// fresh database gets created, and the pull reports success. Transient
// errors are retried up to the bound; on final failure the prior local
// file is left untouched.
func (s *Syncer) Pull(ctx context.Context) bool {
	for i := 0; i < numConnectTries; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		err := s.blobs.DownloadTo(attemptCtx, s.object, s.localPath)
		cancel()
		if err == nil {
			s.log.Info("pulled protocol from cloud storage", "object", s.object)
			return true
		}
		if errors.Is(err, ErrObjectNotFound) {
			if rmErr := os.Remove(s.localPath); rmErr == nil {
				s.log.Debug("removed stale local protocol copy", "path", s.localPath)
			}
			s.log.Info("no protocol found in cloud storage, a new one will be created",
				"object", s.object)
			return true
		}
		s.log.Info("failed pulling from cloud storage",
			"attempt", i+1, "of", numConnectTries, "err", err)
	}
	return false
}

// Push uploads the local protocol file, retrying transient errors up to the
// bound. Failure is non-fatal to the caller: local state stays the source
// of truth.
func (s *Syncer) Push(ctx context.Context) bool {
	for i := 0; i < numConnectTries; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		err := s.blobs.UploadFrom(attemptCtx, s.object, s.localPath)
		cancel()
		if err == nil {
			s.log.Info("sent protocol to cloud storage", "object", s.object)
			return true
		}
		s.log.Info("failed sending to cloud storage",
			"attempt", i+1, "of", numConnectTries, "err", err)
	}
	return false
}
