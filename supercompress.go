// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
)

const (
	// MinZstdLevel and MaxZstdLevel bound the zstd levels accepted by Supercompress.
	MinZstdLevel = 1
	MaxZstdLevel = 22
)

// zstdDecoder is shared; zstd.Decoder is safe for concurrent DecodeAll.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("ktx2: zstd decoder initialization failed: " + err.Error())
	}
}

// Supercompress returns a copy of c with every level compressed as one
// Zstandard stream at the given level. c must not be supercompressed.
func Supercompress(c *Container, level int) (*Container, error) {
	if c.Supercompression != SupercompressionNone {
		return nil, errors.Wrapf(ErrAlreadySupercompressed, "%s", c.Supercompression)
	}
	if level < MinZstdLevel || level > MaxZstdLevel {
		return nil, errors.Wrapf(ErrInvalidZstdLevel, "%d", level)
	}

	out := c.cloneHeader()
	out.Supercompression = SupercompressionZstd
	if len(c.DFD) > 0 {
		// Supercompressed files carry no plane sizes.
		dfd, err := withBytesPlanes(c.DFD, 0)
		if err != nil {
			return nil, err
		}
		out.DFD = dfd
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, errors.Wrap(err, "zstd encoder")
	}
	defer func() { _ = enc.Close() }()

	out.Levels = make([]Level, len(c.Levels))
	for i, lvl := range c.Levels {
		out.Levels[i] = Level{
			Data:                   enc.EncodeAll(lvl.Data, nil),
			UncompressedByteLength: uint64(len(lvl.Data)),
		}
	}

	return out, nil
}

// Inflate returns a copy of c with Zstandard supercompression removed.
func Inflate(c *Container) (*Container, error) {
	if c.Supercompression != SupercompressionZstd {
		return nil, errors.Wrapf(ErrNotSupercompressed, "%s", c.Supercompression)
	}

	out := c.cloneHeader()
	out.Supercompression = SupercompressionNone
	out.SGD = nil
	if len(c.DFD) > 0 && c.VkFormat == FormatUndefined {
		dfd, err := withBytesPlanes(c.DFD, BlockBytes)
		if err != nil {
			return nil, err
		}
		out.DFD = dfd
	}

	out.Levels = make([]Level, len(c.Levels))
	for i, lvl := range c.Levels {
		data, err := InflateLevel(lvl)
		if err != nil {
			return nil, errors.Wrapf(err, "level %d", i)
		}
		out.Levels[i] = Level{Data: data, UncompressedByteLength: uint64(len(data))}
	}

	return out, nil
}

// InflateLevel decodes one Zstandard level and checks it against the
// declared uncompressed length when one is set.
func InflateLevel(lvl Level) ([]byte, error) {
	capHint := 0
	if n, err := intFromU64(lvl.UncompressedByteLength); err == nil {
		capHint = n
	}

	data, err := zstdDecoder.DecodeAll(lvl.Data, make([]byte, 0, capHint))
	if err != nil {
		return nil, errors.Wrapf(ErrZstdDecode, "%v", err)
	}
	if lvl.UncompressedByteLength > 0 && uint64(len(data)) != lvl.UncompressedByteLength {
		return nil, errors.Wrapf(ErrInflatedSizeMismatch, "got %d, declared %d", len(data), lvl.UncompressedByteLength)
	}

	return data, nil
}
