// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// Write encodes c and writes it to path.
func Write(c *Container, path string) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(ErrCreateFile, "%q: %v", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errors.Wrapf(ErrWriteFile, "%q: %v", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(ErrWriteFile, "%q: %v", path, err)
	}

	return nil
}

// WriteTo encodes c and writes it to w.
func WriteTo(w io.Writer, c *Container) (int64, error) {
	data, err := Encode(c)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(data)
	if err != nil {
		return int64(n), errors.Wrapf(ErrWriteFile, "%v", err)
	}

	return int64(n), nil
}

// Encode serializes c into KTX2 bytes. Levels are stored smallest first.
func Encode(c *Container) ([]byte, error) {
	if err := checkHeader(c); err != nil {
		return nil, err
	}
	numLevels := c.NumLevels()
	if len(c.Levels) != numLevels {
		return nil, errors.Wrapf(ErrLevelCountMismatch, "header says %d, have %d", numLevels, len(c.Levels))
	}

	kvd := encodeKeyValues(c.KeyValues)

	pos := headerSize + indexSize + numLevels*levelIndexSize
	dfdOffset := 0
	if len(c.DFD) > 0 {
		pos = alignUp(pos, 4)
		dfdOffset = pos
		pos += len(c.DFD)
	}
	kvdOffset := 0
	if len(kvd) > 0 {
		pos = alignUp(pos, 4)
		kvdOffset = pos
		pos += len(kvd)
	}
	sgdOffset := 0
	if len(c.SGD) > 0 {
		pos = alignUp(pos, 8)
		sgdOffset = pos
		pos += len(c.SGD)
	}

	align := levelAlignment(c)
	levelOffsets := make([]int, numLevels)
	for i := numLevels - 1; i >= 0; i-- {
		pos = alignUp(pos, align)
		levelOffsets[i] = pos
		pos += len(c.Levels[i].Data)
	}

	dfdLength, err := u32FromInt(len(c.DFD))
	if err != nil {
		return nil, err
	}
	kvdLength, err := u32FromInt(len(kvd))
	if err != nil {
		return nil, err
	}
	if _, err := u32FromInt(kvdOffset); err != nil {
		return nil, err
	}

	out := make([]byte, pos)
	le := binary.LittleEndian
	copy(out, Identifier[:])
	h := out[len(Identifier):]
	le.PutUint32(h[0:], c.VkFormat)
	le.PutUint32(h[4:], c.TypeSize)
	le.PutUint32(h[8:], c.PixelWidth)
	le.PutUint32(h[12:], c.PixelHeight)
	le.PutUint32(h[16:], c.PixelDepth)
	le.PutUint32(h[20:], c.LayerCount)
	le.PutUint32(h[24:], c.FaceCount)
	le.PutUint32(h[28:], c.LevelCount)
	le.PutUint32(h[32:], uint32(c.Supercompression))

	idx := out[headerSize:]
	le.PutUint32(idx[0:], uint32(dfdOffset))
	le.PutUint32(idx[4:], dfdLength)
	le.PutUint32(idx[8:], uint32(kvdOffset))
	le.PutUint32(idx[12:], kvdLength)
	le.PutUint64(idx[16:], uint64(sgdOffset))
	le.PutUint64(idx[24:], uint64(len(c.SGD)))

	levelIndex := out[headerSize+indexSize:]
	for i, level := range c.Levels {
		uncompressed := uint64(len(level.Data))
		if c.Supercompression != SupercompressionNone {
			uncompressed = level.UncompressedByteLength
		}

		entry := levelIndex[i*levelIndexSize:]
		le.PutUint64(entry[0:], uint64(levelOffsets[i]))
		le.PutUint64(entry[8:], uint64(len(level.Data)))
		le.PutUint64(entry[16:], uncompressed)
		copy(out[levelOffsets[i]:], level.Data)
	}

	copy(out[dfdOffset:], c.DFD)
	copy(out[kvdOffset:], kvd)
	copy(out[sgdOffset:], c.SGD)

	return out, nil
}

// levelAlignment returns the required alignment of each level's data:
// lcm(texel block size, 4) without supercompression and 1 otherwise.
func levelAlignment(c *Container) int {
	if c.Supercompression != SupercompressionNone {
		return 1
	}

	blockSize := BlockBytes
	if c.VkFormat == FormatUndefined && len(c.DFD) > 0 {
		if n, err := DescriptorBytesPlane0(c.DFD); err == nil && n > 0 {
			blockSize = n
		}
	}

	return lcm(blockSize, 4)
}

// encodeKeyValues serializes entries in order, each padded to 4 bytes.
func encodeKeyValues(kvs []KeyValue) []byte {
	if len(kvs) == 0 {
		return nil
	}

	size := 0
	for _, kv := range kvs {
		size += alignUp(4+len(kv.Key)+1+len(kv.Value), 4)
	}

	out := make([]byte, size)
	pos := 0
	for _, kv := range kvs {
		n := len(kv.Key) + 1 + len(kv.Value)
		binary.LittleEndian.PutUint32(out[pos:], uint32(n))
		pos += 4
		pos += copy(out[pos:], kv.Key)
		pos++ // NUL
		pos += copy(out[pos:], kv.Value)
		pos = alignUp(pos, 4)
	}

	return out
}
