// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/woozymasta/ktx2"
	"github.com/woozymasta/ktx2/internal/loader"
	"github.com/woozymasta/ktx2/internal/manifest"
	"github.com/woozymasta/ktx2/internal/stream"
)

type mergeFlags struct {
	output    string
	manifest  string
	zstdLevel int
	inflate   bool
	jobs      int
}

func newMergeCmd(a *app) *cobra.Command {
	var f mergeFlags

	cmd := &cobra.Command{
		Use:   "merge -o <output> <layer>... | merge -m <manifest>",
		Short: "merge single-layer KTX2 files into one texture array",
		Long: `Merge stacks the given KTX2 files, in order, as layers 0..N-1 of one
array texture. All inputs must share size, mip count, DFD and
supercompression (none or zstd). Files ending in .lz4 or .zst are
decompressed on read and compressed on write.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := f.job(args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			return runMerge(ctx, a.logger, job, f.jobs)
		},
	}

	cmd.Flags().StringVarP(
		&f.output, "output", "o", "", "merged output file")
	cmd.Flags().StringVarP(
		&f.manifest, "manifest", "m", "", "YAML merge manifest")
	cmd.Flags().IntVar(
		&f.zstdLevel, "zstd", 0, "supercompress an uncompressed result at this zstd level (0 keeps it)")
	cmd.Flags().BoolVar(
		&f.inflate, "inflate", false, "remove zstd supercompression from inputs before merging")
	cmd.Flags().IntVarP(
		&f.jobs, "jobs", "j", runtime.NumCPU(), "number of inputs loaded concurrently")

	return cmd
}

// job builds the merge job from either the manifest or the command line.
func (f *mergeFlags) job(args []string) (*manifest.Manifest, error) {
	if f.manifest != "" {
		if len(args) > 0 || f.output != "" {
			return nil, errors.New("--manifest cannot be combined with --output or layer arguments")
		}
		m, err := manifest.Load(f.manifest)
		if err != nil {
			return nil, err
		}
		if f.zstdLevel != 0 {
			m.ZstdLevel = f.zstdLevel
		}
		m.Inflate = m.Inflate || f.inflate
		return m, m.Validate()
	}

	m := &manifest.Manifest{
		Output:    f.output,
		Layers:    args,
		ZstdLevel: f.zstdLevel,
		Inflate:   f.inflate,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

func runMerge(ctx context.Context, logger *slog.Logger, job *manifest.Manifest, jobs int) error {
	inputs, err := loader.Load(ctx, job.Layers, loader.Options{
		Jobs:    jobs,
		Inflate: job.Inflate,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	out, err := ktx2.MergeArray(inputs, &ktx2.MergeOptions{Logger: logger})
	if err != nil {
		return errors.Wrap(err, "merge")
	}

	if job.ZstdLevel > 0 {
		if out.Supercompression == ktx2.SupercompressionNone {
			if out, err = ktx2.Supercompress(out, job.ZstdLevel); err != nil {
				return err
			}
		} else {
			logger.Warn("inputs are already supercompressed, ignoring zstd level",
				slog.Int("zstd_level", job.ZstdLevel))
		}
	}

	data, err := ktx2.Encode(out)
	if err != nil {
		return errors.Wrap(err, "encode")
	}
	if err := stream.WriteFile(job.Output, data); err != nil {
		return err
	}

	logger.Info("wrote texture array",
		slog.String("path", job.Output),
		slog.Int("layers", out.Layers()),
		slog.Int("levels", len(out.Levels)),
		slog.String("supercompression", out.Supercompression.String()),
		slog.String("size", humanize.IBytes(uint64(len(data)))),
	)

	return nil
}
