package cmd

import (
	"bytes"
	"context"

	"github.com/nikogura/resume-randomizer/pkg/config"
	"github.com/nikogura/resume-randomizer/pkg/sink"
	"github.com/nikogura/resume-randomizer/pkg/sink/fs"
	"github.com/nikogura/resume-randomizer/pkg/sink/memory"
	"github.com/nikogura/resume-randomizer/pkg/sink/s3"
	"github.com/pkg/errors"
)

// openStore builds the artifact sink selected by the config.
func openStore(ctx context.Context, cfg config.Config, outDir string) (store sink.Store, err error) {
	switch cfg.Sink.Driver {
	case config.DriverMemory:
		store = memory.New()
	case config.DriverS3:
		store, err = s3.New(ctx, s3.Config{
			Region:    cfg.Sink.Region,
			Bucket:    cfg.Sink.Bucket,
			Prefix:    cfg.Sink.Prefix,
			Endpoint:  cfg.Sink.Endpoint,
			PathStyle: cfg.Sink.PathStyle,
		})
	default:
		store, err = fs.New(outDir)
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to open %s sink", cfg.Sink.Driver)
		return store, err
	}

	return store, err
}

// putArtifact stores data under key and reports where it went.
func putArtifact(ctx context.Context, store sink.Store, key string, data []byte) (info sink.Info, err error) {
	info, err = store.Put(ctx, key, bytes.NewReader(data), sink.ContentType(key))
	if err != nil {
		err = errors.Wrapf(err, "failed to store %s", key)
		return info, err
	}

	if getVerbose() {
		printOK("Stored %s (%d bytes)", info.URL, info.Size)
	}

	return info, err
}
