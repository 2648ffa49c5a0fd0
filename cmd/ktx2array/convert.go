// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package main

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/woozymasta/ktx2"
	"github.com/woozymasta/ktx2/internal/stream"
)

func newCompressCmd(a *app) *cobra.Command {
	var (
		output string
		level  int
	)

	cmd := &cobra.Command{
		Use:   "compress -o <output> <input>",
		Short: "apply zstd supercompression to a KTX2 file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return convertFile(a.logger, args[0], output, func(c *ktx2.Container) (*ktx2.Container, error) {
				return ktx2.Supercompress(c, level)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().IntVarP(&level, "level", "l", 19, "zstd level (1-22)")

	return cmd
}

func newInflateCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "inflate -o <output> <input>",
		Short: "remove zstd supercompression from a KTX2 file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return convertFile(a.logger, args[0], output, ktx2.Inflate)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")

	return cmd
}

// convertFile reads input, applies fn and writes the result to output.
func convertFile(logger *slog.Logger, input, output string, fn func(*ktx2.Container) (*ktx2.Container, error)) error {
	if output == "" {
		return errors.New("--output is required")
	}

	data, err := stream.ReadFile(input)
	if err != nil {
		return err
	}
	c, err := ktx2.Decode(data)
	if err != nil {
		return errors.Wrapf(err, "decode %q", input)
	}

	out, err := fn(c)
	if err != nil {
		return errors.Wrapf(err, "convert %q", input)
	}

	encoded, err := ktx2.Encode(out)
	if err != nil {
		return errors.Wrap(err, "encode")
	}
	if err := stream.WriteFile(output, encoded); err != nil {
		return err
	}

	logger.Info("wrote texture",
		slog.String("path", output),
		slog.String("supercompression", out.Supercompression.String()),
		slog.String("before", humanize.IBytes(uint64(len(data)))),
		slog.String("after", humanize.IBytes(uint64(len(encoded)))),
	)

	return nil
}
