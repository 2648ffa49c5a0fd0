// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import "bytes"

// validateInputs checks that every input can be stacked as a layer of
// inputs[0]. The first violation is returned as a *MergeError.
func validateInputs(inputs []*Container) error {
	if len(inputs) == 0 {
		return newMergeError(ErrNoInputs, -1)
	}

	for i, in := range inputs {
		if in == nil {
			return newMergeError(ErrNoInputs, i)
		}
		if err := checkSupported(i, in); err != nil {
			return err
		}
	}

	ref := inputs[0]
	for i := 1; i < len(inputs); i++ {
		if err := checkMatches(i, ref, inputs[i]); err != nil {
			return err
		}
	}

	return nil
}

// checkSupported rejects inputs this merger cannot handle regardless of
// the other inputs.
func checkSupported(i int, in *Container) error {
	if in.VkFormat != FormatUndefined {
		err := newMergeError(ErrUnsupportedPixelFormat, i)
		err.Fields = []string{"vkFormat"}
		err.Got = uint64(in.VkFormat)
		return err
	}

	switch in.Supercompression {
	case SupercompressionNone, SupercompressionZstd:
	default:
		err := newMergeError(ErrUnsupportedSupercompression, i)
		err.Fields = []string{"supercompressionScheme=" + in.Supercompression.String()}
		return err
	}

	var fields []string
	if in.FaceCount != 1 {
		fields = append(fields, "faceCount")
	}
	if in.PixelDepth > 1 {
		fields = append(fields, "pixelDepth")
	}
	if in.LayerCount > 1 {
		fields = append(fields, "layerCount")
	}
	if len(fields) > 0 {
		err := newMergeError(ErrUnsupportedGeometry, i)
		err.Fields = fields
		return err
	}

	return nil
}

type headerField struct {
	name string
	get  func(*Container) uint64
}

var matchedFields = []headerField{
	{"pixelWidth", func(c *Container) uint64 { return uint64(c.PixelWidth) }},
	{"pixelHeight", func(c *Container) uint64 { return uint64(c.PixelHeight) }},
	{"pixelDepth", func(c *Container) uint64 { return uint64(c.PixelDepth) }},
	{"levelCount", func(c *Container) uint64 { return uint64(c.LevelCount) }},
	{"vkFormat", func(c *Container) uint64 { return uint64(c.VkFormat) }},
	{"supercompressionScheme", func(c *Container) uint64 { return uint64(c.Supercompression) }},
	{"typeSize", func(c *Container) uint64 { return uint64(c.TypeSize) }},
}

// checkMatches compares in against ref field by field.
func checkMatches(i int, ref, in *Container) error {
	var err *MergeError
	for _, f := range matchedFields {
		want, got := f.get(ref), f.get(in)
		if want == got {
			continue
		}
		if err == nil {
			err = newMergeError(ErrGeometryMismatch, i)
			err.Got, err.Want = got, want
		}
		err.Fields = append(err.Fields, f.name)
	}
	if err != nil {
		if len(err.Fields) > 1 {
			err.Got, err.Want = 0, 0
		}
		return err
	}

	if len(ref.DFD) == 0 && len(in.DFD) == 0 {
		return nil
	}
	if !bytes.Equal(ref.DFD, in.DFD) {
		err := newMergeError(ErrDescriptorMismatch, i)
		if len(in.DFD) != len(ref.DFD) {
			err.Got, err.Want = uint64(len(in.DFD)), uint64(len(ref.DFD))
		}
		return err
	}

	return nil
}
