package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/durablefs/vfs/internal/blob"
	"github.com/durablefs/vfs/internal/config"
	"github.com/durablefs/vfs/internal/logging"
	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/internal/watch"
	"github.com/durablefs/vfs/pkg/vfs"
)

// stores bundles the component stores a CLI command needs, before they're
// wrapped by vfs.FS. gc needs direct blob.Store access that the FS-level
// API doesn't expose (blob sweeping is a maintenance operation, not a
// filesystem one), so buildFS and runGC share this assembly step.
type stores struct {
	meta  *metadata.Store
	blobs *blob.Store
	log   zerolog.Logger
}

func (s *stores) Close() error {
	return s.meta.Close()
}

func buildStores(ctx context.Context, cfg *config.Config, debug bool) (*stores, error) {
	logLevel := cfg.Log.Level
	if debug {
		logLevel = "debug"
	}
	log := logging.New(logging.Config{Level: logLevel, JSON: cfg.Log.JSON})

	meta, err := metadata.Open(ctx, cfg.Metadata.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	meta.SetTransactionTimeout(cfg.Metadata.TransactionTimeout)
	meta.SetPathCacheOptions(cfg.Cache.TTL, cfg.Cache.MaxEntries)

	hot, err := blob.NewHotBackend(cfg.Blob.HotDir)
	if err != nil {
		meta.Close()
		return nil, fmt.Errorf("open hot tier: %w", err)
	}
	backends := blob.Backends{metadata.TierHot: hot}

	if cfg.Blob.S3Bucket != "" {
		s3, err := blob.NewS3Backend(ctx, blob.S3Config{
			Bucket: cfg.Blob.S3Bucket,
			Prefix: cfg.Blob.S3Prefix,
			Region: cfg.Blob.S3Region,
		})
		if err != nil {
			meta.Close()
			return nil, fmt.Errorf("open s3 tier: %w", err)
		}
		backends[metadata.TierWarm] = s3
		backends[metadata.TierCold] = s3
	}

	policy := blob.TierPolicy{HotMax: cfg.Blob.HotMax, WarmMax: cfg.Blob.WarmMax}
	blobs := blob.New(meta, backends, policy)

	return &stores{meta: meta, blobs: blobs, log: log}, nil
}

// buildFS assembles a *vfs.FS from cfg, starting a fresh watch manager on
// top of buildStores. The returned closer releases every owned resource;
// callers must call it exactly once, typically on shutdown.
func buildFS(ctx context.Context, cfg *config.Config, debug bool) (*vfs.FS, func() error, error) {
	st, err := buildStores(ctx, cfg, debug)
	if err != nil {
		return nil, nil, err
	}

	watcher := watch.NewManager()
	fs := vfs.New(vfs.Options{
		Meta:   st.meta,
		Blobs:  st.blobs,
		Watch:  watcher,
		Logger: logging.Component(st.log, "vfs"),
	})

	closer := func() error {
		return fs.Close(context.Background())
	}
	return fs, closer, nil
}
