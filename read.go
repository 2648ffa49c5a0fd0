// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// Identifier is the 12-byte KTX2 file signature.
var Identifier = [12]byte{0xAB, 'K', 'T', 'X', ' ', '2', '0', 0xBB, '\r', '\n', 0x1A, '\n'}

const (
	headerSize     = 12 + 9*4
	indexSize      = 4*4 + 2*8
	levelIndexSize = 3 * 8
)

// Read reads and decodes a KTX2 file.
func Read(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrOpenFile, "%q: %v", path, err)
	}

	return Decode(data)
}

// ReadFrom reads all of r and decodes it.
func ReadFrom(r io.Reader) (*Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(ErrReadFile, "%v", err)
	}

	return Decode(data)
}

// IsKTX2 reports whether data starts with the KTX2 identifier.
func IsKTX2(data []byte) bool {
	return len(data) >= len(Identifier) && bytes.Equal(data[:len(Identifier)], Identifier[:])
}

// Decode parses a KTX2 file. DFD, SGD and level data alias data; key/value
// values are copied.
func Decode(data []byte) (*Container, error) {
	if !IsKTX2(data) {
		return nil, ErrInvalidIdentifier
	}
	if len(data) < headerSize+indexSize {
		return nil, errors.Wrapf(ErrHeaderTruncated, "%d bytes", len(data))
	}

	le := binary.LittleEndian
	h := data[len(Identifier):]
	c := &Container{
		VkFormat:         le.Uint32(h[0:]),
		TypeSize:         le.Uint32(h[4:]),
		PixelWidth:       le.Uint32(h[8:]),
		PixelHeight:      le.Uint32(h[12:]),
		PixelDepth:       le.Uint32(h[16:]),
		LayerCount:       le.Uint32(h[20:]),
		FaceCount:        le.Uint32(h[24:]),
		LevelCount:       le.Uint32(h[28:]),
		Supercompression: Supercompression(le.Uint32(h[32:])),
	}
	if err := checkHeader(c); err != nil {
		return nil, err
	}

	idx := data[headerSize:]
	dfdOffset := uint64(le.Uint32(idx[0:]))
	dfdLength := uint64(le.Uint32(idx[4:]))
	kvdOffset := uint64(le.Uint32(idx[8:]))
	kvdLength := uint64(le.Uint32(idx[12:]))
	sgdOffset := le.Uint64(idx[16:])
	sgdLength := le.Uint64(idx[24:])

	numLevels := c.NumLevels()
	levelIndexEnd := headerSize + indexSize + numLevels*levelIndexSize
	if len(data) < levelIndexEnd {
		return nil, errors.Wrapf(ErrHeaderTruncated, "level index needs %d bytes, have %d", levelIndexEnd, len(data))
	}

	var err error
	if c.DFD, err = sliceRange(data, dfdOffset, dfdLength); err != nil {
		return nil, errors.Wrapf(ErrInvalidIndex, "dfd: %v", err)
	}
	kvd, err := sliceRange(data, kvdOffset, kvdLength)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidIndex, "kvd: %v", err)
	}
	if c.KeyValues, err = decodeKeyValues(kvd); err != nil {
		return nil, err
	}
	if c.SGD, err = sliceRange(data, sgdOffset, sgdLength); err != nil {
		return nil, errors.Wrapf(ErrInvalidIndex, "sgd: %v", err)
	}

	c.Levels = make([]Level, numLevels)
	levelIndex := data[headerSize+indexSize : levelIndexEnd]
	for i := range c.Levels {
		entry := levelIndex[i*levelIndexSize:]
		offset := le.Uint64(entry[0:])
		length := le.Uint64(entry[8:])
		levelData, err := sliceRange(data, offset, length)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidLevelIndex, "level %d: %v", i, err)
		}
		c.Levels[i] = Level{
			Data:                   levelData,
			UncompressedByteLength: le.Uint64(entry[16:]),
		}
	}

	return c, nil
}

// checkHeader rejects header values no valid KTX2 file can carry.
func checkHeader(c *Container) error {
	if c.PixelWidth == 0 {
		return errors.Wrap(ErrInvalidHeader, "pixelWidth is 0")
	}
	if c.PixelDepth > 0 && c.PixelHeight == 0 {
		return errors.Wrapf(ErrInvalidHeader, "pixelHeight is 0 with pixelDepth %d", c.PixelDepth)
	}
	if c.FaceCount != 1 && c.FaceCount != 6 {
		return errors.Wrapf(ErrInvalidHeader, "faceCount %d", c.FaceCount)
	}

	maxLevels := maxMipMapCount(max(c.PixelWidth, c.PixelHeight, c.PixelDepth), 1)
	if c.LevelCount > maxLevels {
		return errors.Wrapf(ErrTooManyLevels, "%d > %d for %dx%d", c.LevelCount, maxLevels, c.PixelWidth, c.PixelHeight)
	}

	return nil
}

// sliceRange returns data[offset:offset+length]. A zero length yields nil.
func sliceRange(data []byte, offset, length uint64) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}

	end := offset + length
	if end < offset || end > uint64(len(data)) {
		return nil, errors.Newf("range %d+%d exceeds %d bytes", offset, length, len(data))
	}

	start, err := intFromU64(offset)
	if err != nil {
		return nil, err
	}
	stop, err := intFromU64(end)
	if err != nil {
		return nil, err
	}

	return data[start:stop:stop], nil
}

// decodeKeyValues parses the key/value data block.
func decodeKeyValues(kvd []byte) ([]KeyValue, error) {
	if len(kvd) == 0 {
		return nil, nil
	}

	var out []KeyValue
	pos := 0
	for pos < len(kvd) {
		if len(kvd)-pos < 4 {
			// Trailing alignment padding after the last entry.
			if allZero(kvd[pos:]) {
				break
			}
			return nil, errors.Wrapf(ErrInvalidKeyValue, "%d stray bytes at %d", len(kvd)-pos, pos)
		}

		n := int(binary.LittleEndian.Uint32(kvd[pos:]))
		pos += 4
		if n <= 0 || n > len(kvd)-pos {
			return nil, errors.Wrapf(ErrInvalidKeyValue, "entry length %d at %d", n, pos-4)
		}

		entry := kvd[pos : pos+n]
		nul := bytes.IndexByte(entry, 0)
		if nul <= 0 {
			return nil, errors.Wrapf(ErrInvalidKeyValue, "entry at %d has no NUL-terminated key", pos-4)
		}

		out = append(out, KeyValue{
			Key:   string(entry[:nul]),
			Value: cloneBytes(entry[nul+1:]),
		})

		pos = alignUp(pos+n, 4)
	}

	return out, nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}

	return true
}
