// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"bytes"
	"fmt"
	"sort"
)

const (
	// FormatUndefined is VK_FORMAT_UNDEFINED, the vkFormat used by Basis Universal
	// payloads whose format is carried by the data format descriptor.
	FormatUndefined uint32 = 0

	// BlockDimension is the texel width and height of one compressed block.
	BlockDimension = 4
	// BlockBytes is the byte size of one compressed block.
	BlockBytes = 16
)

// Supercompression is the KTX2 supercompressionScheme header field.
type Supercompression uint32

const (
	// SupercompressionNone stores level data as plain blocks.
	SupercompressionNone Supercompression = 0
	// SupercompressionBasisLZ is the ETC1S global-codebook scheme.
	SupercompressionBasisLZ Supercompression = 1
	// SupercompressionZstd compresses each level as one Zstandard stream.
	SupercompressionZstd Supercompression = 2
	// SupercompressionZLIB compresses each level as one zlib stream.
	SupercompressionZLIB Supercompression = 3
)

// String returns the human-readable name of a scheme.
func (s Supercompression) String() string {
	switch s {
	case SupercompressionNone:
		return "none"
	case SupercompressionBasisLZ:
		return "basislz"
	case SupercompressionZstd:
		return "zstd"
	case SupercompressionZLIB:
		return "zlib"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(s))
	}
}

// KeyValue is one entry of the key/value data block.
type KeyValue struct {
	Key   string
	Value []byte
}

// Level holds the data of one mip level across all layers and faces.
type Level struct {
	Data []byte
	// UncompressedByteLength is the size of Data after supercompression is
	// removed. Zero means the length was not declared.
	UncompressedByteLength uint64
}

// Container is a decoded KTX2 file.
type Container struct {
	VkFormat         uint32
	TypeSize         uint32
	PixelWidth       uint32
	PixelHeight      uint32
	PixelDepth       uint32
	LayerCount       uint32
	FaceCount        uint32
	LevelCount       uint32
	Supercompression Supercompression

	// DFD is the data format descriptor including its leading dfdTotalSize word.
	DFD []byte
	// KeyValues is the key/value data in file order.
	KeyValues []KeyValue
	// SGD is the supercompression global data.
	SGD []byte
	// Levels is indexed by mip level, level 0 being full resolution.
	Levels []Level
}

// NumLevels returns the number of level index entries, max(1, LevelCount).
func (c *Container) NumLevels() int {
	if c.LevelCount == 0 {
		return 1
	}

	return int(c.LevelCount)
}

// Layers returns the number of array layers, max(1, LayerCount).
func (c *Container) Layers() int {
	if c.LayerCount == 0 {
		return 1
	}

	return int(c.LayerCount)
}

// Value returns the value stored under key.
func (c *Container) Value(key string) ([]byte, bool) {
	for _, kv := range c.KeyValues {
		if kv.Key == key {
			return kv.Value, true
		}
	}

	return nil, false
}

// SetValue stores value under key, keeping entries sorted by key bytes.
func (c *Container) SetValue(key string, value []byte) {
	for i := range c.KeyValues {
		if c.KeyValues[i].Key == key {
			c.KeyValues[i].Value = value
			return
		}
	}

	c.KeyValues = append(c.KeyValues, KeyValue{Key: key, Value: value})
	sort.SliceStable(c.KeyValues, func(i, j int) bool {
		return c.KeyValues[i].Key < c.KeyValues[j].Key
	})
}

// cloneBytes returns a copy of b, preserving nil.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	return bytes.Clone(b)
}

func cloneKeyValues(kvs []KeyValue) []KeyValue {
	if kvs == nil {
		return nil
	}

	out := make([]KeyValue, len(kvs))
	for i, kv := range kvs {
		out[i] = KeyValue{Key: kv.Key, Value: cloneBytes(kv.Value)}
	}

	return out
}

// cloneHeader copies c without its level data.
func (c *Container) cloneHeader() *Container {
	return &Container{
		VkFormat:         c.VkFormat,
		TypeSize:         c.TypeSize,
		PixelWidth:       c.PixelWidth,
		PixelHeight:      c.PixelHeight,
		PixelDepth:       c.PixelDepth,
		LayerCount:       c.LayerCount,
		FaceCount:        c.FaceCount,
		LevelCount:       c.LevelCount,
		Supercompression: c.Supercompression,
		DFD:              cloneBytes(c.DFD),
		KeyValues:        cloneKeyValues(c.KeyValues),
		SGD:              cloneBytes(c.SGD),
	}
}
