// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/bits"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/woozymasta/ktx2"
	"github.com/woozymasta/ktx2/internal/stream"
)

// errVerify is returned when inspect --verify finds a bad level.
var errVerify = errors.New("verification failed")

func newInspectCmd(a *app) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "inspect <file>...",
		Short: "print KTX2 header and level table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			for _, path := range args {
				ok, err := inspectFile(cmd.OutOrStdout(), a.logger, path, verify)
				if err != nil {
					return err
				}
				failed = failed || !ok
			}
			if failed {
				return errVerify
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(
		&verify, "verify", false, "inflate zstd levels and check level sizes")

	return cmd
}

// inspectFile prints one file. The bool result is false when --verify
// found a problem.
func inspectFile(w io.Writer, logger *slog.Logger, path string, verify bool) (bool, error) {
	data, err := stream.ReadFile(path)
	if err != nil {
		return false, err
	}
	c, err := ktx2.Decode(data)
	if err != nil {
		return false, errors.Wrapf(err, "decode %q", path)
	}

	fmt.Fprintf(w, "%s (%s)\n", path, humanize.IBytes(uint64(len(data))))
	fmt.Fprintf(w, "  vkFormat:         %d\n", c.VkFormat)
	fmt.Fprintf(w, "  typeSize:         %d\n", c.TypeSize)
	fmt.Fprintf(w, "  size:             %dx%dx%d\n", c.PixelWidth, c.PixelHeight, c.PixelDepth)
	fmt.Fprintf(w, "  layers:           %d\n", c.LayerCount)
	fmt.Fprintf(w, "  faces:            %d\n", c.FaceCount)
	fmt.Fprintf(w, "  levels:           %d\n", c.LevelCount)
	fmt.Fprintf(w, "  supercompression: %s\n", c.Supercompression)
	fmt.Fprintf(w, "  dfd:              %d bytes\n", len(c.DFD))
	fmt.Fprintf(w, "  sgd:              %d bytes\n", len(c.SGD))
	for _, kv := range c.KeyValues {
		fmt.Fprintf(w, "  kv %-15q %s\n", kv.Key, printableValue(kv.Value))
	}

	header := []string{"Level", "Size", "Bytes", "Uncompressed", "XXH64"}
	if verify {
		header = append(header, "Check")
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)

	ok := true
	for level, lvl := range c.Levels {
		row := []string{
			strconv.Itoa(level),
			fmt.Sprintf("%dx%d", max(1, c.PixelWidth>>level), max(1, c.PixelHeight>>level)),
			humanize.Comma(int64(len(lvl.Data))),
			humanize.Comma(int64(lvl.UncompressedByteLength)),
			fmt.Sprintf("%016x", xxhash.Sum64(lvl.Data)),
		}
		if verify {
			status := "ok"
			if err := verifyLevel(c, level); err != nil {
				status = err.Error()
				ok = false
				logger.Warn("level check failed", slog.String("path", path), slog.Int("level", level), slog.Any("error", err))
			}
			row = append(row, status)
		}
		table.Append(row)
	}
	table.Render()

	return ok, nil
}

// verifyLevel checks that a level holds every layer image: plain data must
// cover layers*faces block-aligned images, zstd data must inflate to its
// declared length.
func verifyLevel(c *ktx2.Container, level int) error {
	lvl := c.Levels[level]
	switch c.Supercompression {
	case ktx2.SupercompressionNone:
		if c.VkFormat != ktx2.FormatUndefined {
			return nil
		}
		size, err := ktx2.BlockAlignedSize(c.PixelWidth, c.PixelHeight, level)
		if err != nil {
			return err
		}
		images := uint64(c.Layers()) * uint64(c.FaceCount)
		if hi, want := bits.Mul64(images, uint64(size)); hi != 0 || uint64(len(lvl.Data)) < want {
			return errors.Newf("%d bytes, want %d", len(lvl.Data), want)
		}
		return nil
	case ktx2.SupercompressionZstd:
		_, err := ktx2.InflateLevel(lvl)
		return err
	default:
		return nil
	}
}

func printableValue(v []byte) string {
	if n := len(v); n > 0 && v[n-1] == 0 {
		v = v[:n-1]
	}
	for _, b := range v {
		if b < 0x20 || b > 0x7e {
			return fmt.Sprintf("<%d bytes>", len(v))
		}
	}

	return strconv.Quote(string(v))
}
