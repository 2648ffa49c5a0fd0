// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrSizeOverflow indicates a size or offset exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrInvalidIdentifier indicates the data does not start with the KTX2 identifier.
	ErrInvalidIdentifier = errors.New("invalid KTX2 identifier")
	// ErrHeaderTruncated indicates the header or level index is cut short.
	ErrHeaderTruncated = errors.New("KTX2 header truncated")
	// ErrInvalidHeader indicates a header field holds an impossible value.
	ErrInvalidHeader = errors.New("invalid KTX2 header")
	// ErrInvalidIndex indicates a DFD, KVD or SGD range outside the file.
	ErrInvalidIndex = errors.New("invalid KTX2 index")
	// ErrInvalidLevelIndex indicates a level range outside the file.
	ErrInvalidLevelIndex = errors.New("invalid level index")
	// ErrTooManyLevels indicates levelCount exceeds the mip chain of the base size.
	ErrTooManyLevels = errors.New("too many mip levels")
	// ErrInvalidKeyValue indicates malformed key/value data.
	ErrInvalidKeyValue = errors.New("invalid key/value data")
	// ErrLevelCountMismatch indicates Levels does not match the header level count.
	ErrLevelCountMismatch = errors.New("level count mismatch")
	// ErrInvalidDescriptor indicates a data format descriptor too short to carry a basic block.
	ErrInvalidDescriptor = errors.New("invalid data format descriptor")
	// ErrNotSupercompressed indicates the container is not Zstandard supercompressed.
	ErrNotSupercompressed = errors.New("container is not zstd supercompressed")
	// ErrAlreadySupercompressed indicates the container already uses a supercompression scheme.
	ErrAlreadySupercompressed = errors.New("container is already supercompressed")
	// ErrInvalidZstdLevel indicates a zstd level outside 1..22.
	ErrInvalidZstdLevel = errors.New("invalid zstd level")
	// ErrZstdDecode indicates zstd decoding of a level failed.
	ErrZstdDecode = errors.New("zstd decode failed")
	// ErrInflatedSizeMismatch indicates an inflated level differs from its declared length.
	ErrInflatedSizeMismatch = errors.New("inflated level size mismatch")
	// ErrOpenFile indicates KTX2 file open failed.
	ErrOpenFile = errors.New("open file failed")
	// ErrReadFile indicates reading KTX2 data failed.
	ErrReadFile = errors.New("read file failed")
	// ErrCreateFile indicates file creation failed.
	ErrCreateFile = errors.New("create file failed")
	// ErrWriteFile indicates writing KTX2 data failed.
	ErrWriteFile = errors.New("write file failed")
)

// Merge error kinds. A *MergeError unwraps to exactly one of these, or to
// ErrSizeOverflow when a merged level would not fit in memory.
var (
	// ErrNoInputs indicates an empty input list or a nil input.
	ErrNoInputs = errors.New("no inputs")
	// ErrUnsupportedPixelFormat indicates vkFormat is not VK_FORMAT_UNDEFINED.
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
	// ErrUnsupportedSupercompression indicates a scheme other than none or zstd.
	ErrUnsupportedSupercompression = errors.New("unsupported supercompression scheme")
	// ErrUnsupportedGeometry indicates a cube map, 3D texture or multi-layer input.
	ErrUnsupportedGeometry = errors.New("unsupported texture geometry")
	// ErrGeometryMismatch indicates an input differs from input 0 in geometry or scheme.
	ErrGeometryMismatch = errors.New("geometry or scheme mismatch")
	// ErrDescriptorMismatch indicates an input DFD differs from input 0.
	ErrDescriptorMismatch = errors.New("data format descriptor mismatch")
	// ErrMissingLevelData indicates an input lacks data for a mip level.
	ErrMissingLevelData = errors.New("missing level data")
	// ErrTruncatedPayload indicates level data shorter than its block-aligned size.
	ErrTruncatedPayload = errors.New("truncated level payload")
)

// MergeError describes why MergeArray rejected its inputs.
//
// Input and Level are -1 when they do not apply. Got and Want are set for
// ErrTruncatedPayload and for single-field value mismatches.
type MergeError struct {
	Kind   error
	Input  int
	Level  int
	Fields []string
	Got    uint64
	Want   uint64
}

func newMergeError(kind error, input int) *MergeError {
	return &MergeError{Kind: kind, Input: input, Level: -1}
}

// Error implements error.
func (e *MergeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Input >= 0 {
		fmt.Fprintf(&b, ": input %d", e.Input)
	}
	if e.Level >= 0 {
		fmt.Fprintf(&b, ": level %d", e.Level)
	}
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Fields, ", "))
	}
	if e.Got != 0 || e.Want != 0 {
		fmt.Fprintf(&b, ": got %d, want %d", e.Got, e.Want)
	}

	return b.String()
}

// Unwrap returns the error kind so errors.Is matches the sentinel.
func (e *MergeError) Unwrap() error {
	return e.Kind
}
