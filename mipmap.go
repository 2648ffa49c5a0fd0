// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"math/bits"

	"github.com/cockroachdb/errors"
)

// maxMipMapCount returns the longest mip chain allowed for the given base size.
func maxMipMapCount(width, height uint32) uint32 {
	count := uint32(1)
	w, h := width, height
	for w > 1 || h > 1 {
		count++
		w /= 2
		h /= 2
	}

	return count
}

// mipDimension calculates the dimension of a mipmap level.
func mipDimension(base uint32, level int) uint32 {
	if level >= 32 {
		return 1
	}
	result := base >> uint(level)
	if result < 1 {
		return 1
	}

	return result
}

// BlockAlignedSize returns the byte size of one image at the given mip level
// for a 4x4 block format with 16-byte blocks. Sizes that do not fit in an
// int return ErrSizeOverflow.
func BlockAlignedSize(width, height uint32, level int) (int, error) {
	w := uint64(mipDimension(width, level))
	h := uint64(mipDimension(height, level))
	blocksX := (w + BlockDimension - 1) / BlockDimension
	blocksY := (h + BlockDimension - 1) / BlockDimension

	// blocksX*blocksY is at most 2^60; only the byte scaling can overflow.
	hi, size := bits.Mul64(blocksX*blocksY, BlockBytes)
	if hi != 0 || size > uint64(maxInt) {
		return 0, errors.Wrapf(ErrSizeOverflow, "%dx%d level %d", width, height, level)
	}

	return int(size), nil
}

// mulSize returns n*size, or false when the product does not fit in an int.
func mulSize(n, size int) (int, bool) {
	if n < 0 || size < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(n), uint64(size))
	if hi != 0 || lo > uint64(maxInt) {
		return 0, false
	}

	return int(lo), true
}
