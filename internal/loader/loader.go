// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

// Package loader reads and decodes a list of KTX2 files concurrently while
// keeping their order.
package loader

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/woozymasta/ktx2"
	"github.com/woozymasta/ktx2/internal/stream"
)

// Options configures Load.
type Options struct {
	// Jobs bounds concurrent loads. Values below 1 mean one load at a time.
	Jobs int
	// Inflate removes zstd supercompression from each loaded container.
	Inflate bool
	// Logger receives per-file debug records. Nil uses slog.Default().
	Logger *slog.Logger
}

// Load decodes every path. Result i belongs to paths[i]. The first failure
// cancels loads that have not started yet.
func Load(ctx context.Context, paths []string, opts Options) ([]*ktx2.Container, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	out := make([]*ktx2.Container, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Jobs))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			c, err := loadOne(path, opts.Inflate)
			if err != nil {
				return errors.Wrapf(err, "layer %d", i)
			}
			logger.Debug("loaded layer",
				slog.Int("layer", i),
				slog.String("path", path),
				slog.Int("levels", len(c.Levels)),
				slog.String("supercompression", c.Supercompression.String()),
			)
			out[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func loadOne(path string, inflate bool) (*ktx2.Container, error) {
	data, err := stream.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c, err := ktx2.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %q", path)
	}
	if inflate && c.Supercompression == ktx2.SupercompressionZstd {
		if c, err = ktx2.Inflate(c); err != nil {
			return nil, errors.Wrapf(err, "inflate %q", path)
		}
	}

	return c, nil
}
