package cmd

import (
	"context"
	"fmt"

	"github.com/mle-tools/mle-monitor/internal/config"
	"github.com/mle-tools/mle-monitor/internal/protocol"
	"github.com/mle-tools/mle-monitor/internal/remote"
)

// openProtocol builds the protocol database with the remote adapter chosen
// by configuration: a GCS syncer when mirroring is enabled, the no-op
// adapter otherwise.
func openProtocol(ctx context.Context, cfg *config.Config) (*protocol.Protocol, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var rem protocol.Remote = remote.Nop{}
	if cfg.UseGCSSync {
		client, err := remote.NewClient(ctx, cfg.ProjectName, cfg.BucketName, cfg.CredentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCS client: %w", err)
		}
		rem = remote.NewSyncer(client, cfg.GCSProtocolPath, cfg.ProtocolPath)
	}

	db, err := protocol.New(ctx, cfg.ProtocolPath, rem)
	if err != nil {
		return nil, fmt.Errorf("failed to open protocol database: %w", err)
	}
	return db, nil
}

// newArchiveClient connects to the results bucket for archive transfer.
func newArchiveClient(ctx context.Context, cfg *config.Config) (*remote.Client, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required for result archiving")
	}
	return remote.NewClient(ctx, cfg.ProjectName, cfg.BucketName, cfg.CredentialsPath)
}

// pushProtocol mirrors the protocol after a successful save. Sync failure
// is logged by the adapter and never fails the local operation.
func pushProtocol(ctx context.Context, db *protocol.Protocol) {
	db.Push(ctx)
}
