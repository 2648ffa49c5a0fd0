// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import "log/slog"

// MergeOptions configures MergeArray.
type MergeOptions struct {
	// Logger receives diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

func (o *MergeOptions) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.Default()
	}

	return o.Logger
}

// MergeArray stacks single-layer containers into one array texture whose
// layer i is inputs[i].
//
// Inputs must share size, level count, vkFormat (VK_FORMAT_UNDEFINED),
// supercompression (none or zstd), typeSize and DFD. Inputs are never
// modified; every level of the result is a new buffer. On error no
// container is returned and the error is a *MergeError.
func MergeArray(inputs []*Container, opts *MergeOptions) (*Container, error) {
	logger := opts.logger()

	if err := validateInputs(inputs); err != nil {
		return nil, err
	}

	layers, err := u32FromInt(len(inputs))
	if err != nil {
		return nil, newMergeError(ErrSizeOverflow, -1)
	}

	ref := inputs[0]
	numLevels := ref.NumLevels()
	imageSizes, err := checkLevels(inputs, numLevels)
	if err != nil {
		return nil, err
	}

	levels := make([]Level, numLevels)
	for level := range levels {
		levels[level] = combineLevel(inputs, level, imageSizes[level], logger)
	}

	out := assemble(ref, layers, levels)
	logger.Debug("merged texture array",
		slog.Int("layers", len(inputs)),
		slog.Int("levels", numLevels),
		slog.String("supercompression", ref.Supercompression.String()),
	)

	return out, nil
}

// checkLevels verifies every input carries every level before any data is
// copied and returns the block-aligned image size of each level. Without
// supercompression each image must also hold at least one block-aligned
// image worth of bytes, and the merged level must fit in memory.
func checkLevels(inputs []*Container, numLevels int) ([]int, error) {
	ref := inputs[0]
	sizes := make([]int, numLevels)
	for level := 0; level < numLevels; level++ {
		want, err := BlockAlignedSize(ref.PixelWidth, ref.PixelHeight, level)
		if err == nil && ref.Supercompression == SupercompressionNone {
			if _, ok := mulSize(len(inputs), want); !ok {
				err = ErrSizeOverflow
			}
		}
		if err != nil {
			mergeErr := newMergeError(ErrSizeOverflow, -1)
			mergeErr.Level = level
			mergeErr.Fields = []string{"pixelWidth", "pixelHeight"}
			return nil, mergeErr
		}
		sizes[level] = want

		for i, in := range inputs {
			if level >= len(in.Levels) || in.Levels[level].Data == nil {
				err := newMergeError(ErrMissingLevelData, i)
				err.Level = level
				return nil, err
			}

			if ref.Supercompression != SupercompressionNone {
				continue
			}
			if got := len(in.Levels[level].Data); got < want {
				err := newMergeError(ErrTruncatedPayload, i)
				err.Level = level
				err.Got, err.Want = uint64(got), uint64(want)
				return nil, err
			}
		}
	}

	return sizes, nil
}

// combineLevel concatenates one level of all inputs in input order.
// imageSize has been checked by checkLevels.
func combineLevel(inputs []*Container, level, imageSize int, logger *slog.Logger) Level {
	ref := inputs[0]

	if ref.Supercompression == SupercompressionNone {
		want := len(inputs) * imageSize
		data := make([]byte, 0, want)
		for _, in := range inputs {
			// Source files may pad level data past the last block.
			data = append(data, in.Levels[level].Data[:imageSize]...)
		}

		if len(data) != want {
			logger.Warn("merged level size differs from block-aligned size",
				slog.Int("level", level),
				slog.Int("bytes", len(data)),
				slog.Int("expected", want),
			)
		}

		return Level{Data: data, UncompressedByteLength: uint64(len(data))}
	}

	total := 0
	for _, in := range inputs {
		total += len(in.Levels[level].Data)
	}

	data := make([]byte, 0, total)
	var logical uint64
	for _, in := range inputs {
		src := in.Levels[level]
		data = append(data, src.Data...)
		if src.UncompressedByteLength > 0 {
			logical += src.UncompressedByteLength
		} else {
			logical += uint64(imageSize)
		}
	}

	return Level{Data: data, UncompressedByteLength: logical}
}

// assemble builds the output container from the reference input's header.
func assemble(ref *Container, layers uint32, levels []Level) *Container {
	out := ref.cloneHeader()
	out.LayerCount = layers
	out.FaceCount = 1
	out.PixelDepth = 0
	// Global data only exists for BasisLZ.
	out.SGD = nil
	out.Levels = levels

	return out
}
