// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

const (
	dfdColorModelUASTC = 166

	dfdPrimariesBT709 = 1

	dfdTransferLinear = 1
	dfdTransferSRGB   = 2

	dfdChannelRGB  = 0
	dfdChannelRGBA = 3

	// dfdBasicBlockSize is the basic descriptor block without samples.
	dfdBasicBlockSize = 24
	dfdSampleSize     = 16

	// dfdBytesPlaneOffset is the offset of bytesPlane0 counted from the
	// start of the DFD, dfdTotalSize word included.
	dfdBytesPlaneOffset = 4 + 16
)

// NewUASTCDescriptor builds a basic data format descriptor for UASTC 4x4
// payloads with a single 128-bit sample.
func NewUASTCDescriptor(srgb, alpha bool) []byte {
	blockSize := dfdBasicBlockSize + dfdSampleSize
	dfd := make([]byte, 4+blockSize)

	transfer := uint32(dfdTransferLinear)
	if srgb {
		transfer = dfdTransferSRGB
	}
	channel := uint32(dfdChannelRGB)
	if alpha {
		channel = dfdChannelRGBA
	}

	le := binary.LittleEndian
	le.PutUint32(dfd[0:], uint32(len(dfd)))
	// vendorId 0 (Khronos), descriptorType 0 (basic).
	le.PutUint32(dfd[4:], 0)
	// versionNumber 2, descriptorBlockSize.
	le.PutUint32(dfd[8:], 2|uint32(blockSize)<<16)
	le.PutUint32(dfd[12:], dfdColorModelUASTC|dfdPrimariesBT709<<8|transfer<<16)
	// texelBlockDimension0..3 are stored minus one.
	dfd[16] = BlockDimension - 1
	dfd[17] = BlockDimension - 1
	dfd[dfdBytesPlaneOffset] = BlockBytes

	sample := dfd[4+dfdBasicBlockSize:]
	// bitOffset 0, bitLength 127 (stored minus one), channelType.
	le.PutUint32(sample[0:], 127<<16|channel<<24)
	le.PutUint32(sample[8:], 0)
	le.PutUint32(sample[12:], 0xFFFFFFFF)

	return dfd
}

// DescriptorBytesPlane0 returns bytesPlane0 of the first descriptor block.
func DescriptorBytesPlane0(dfd []byte) (int, error) {
	if len(dfd) < 4+dfdBasicBlockSize {
		return 0, errors.Wrapf(ErrInvalidDescriptor, "%d bytes", len(dfd))
	}

	return int(dfd[dfdBytesPlaneOffset]), nil
}

// withBytesPlanes returns a copy of dfd with bytesPlane0 set to plane0 and
// bytesPlane1..7 cleared.
func withBytesPlanes(dfd []byte, plane0 byte) ([]byte, error) {
	if len(dfd) < 4+dfdBasicBlockSize {
		return nil, errors.Wrapf(ErrInvalidDescriptor, "%d bytes", len(dfd))
	}

	out := cloneBytes(dfd)
	out[dfdBytesPlaneOffset] = plane0
	for i := 1; i < 8; i++ {
		out[dfdBytesPlaneOffset+i] = 0
	}

	return out, nil
}
