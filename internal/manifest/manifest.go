// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

// Package manifest loads YAML descriptions of texture array merge jobs.
//
// A manifest names the output file and the ordered list of layer files:
//
//	output: terrain.ktx2
//	zstd_level: 19
//	layers:
//	  - grass.ktx2
//	  - dirt.ktx2.zst
//
// Relative paths are resolved against the directory holding the manifest.
package manifest

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/ktx2"
)

var (
	// ErrNoOutput indicates the manifest has no output path.
	ErrNoOutput = errors.New("manifest has no output")
	// ErrNoLayers indicates the manifest lists no layers.
	ErrNoLayers = errors.New("manifest has no layers")
	// ErrEmptyLayer indicates a blank layer entry.
	ErrEmptyLayer = errors.New("manifest layer path is empty")
)

// Manifest is one merge job.
type Manifest struct {
	// Output is the merged container path.
	Output string `yaml:"output"`

	// Layers are the input containers in layer order.
	Layers []string `yaml:"layers"`

	// ZstdLevel supercompresses an uncompressed result when non-zero.
	ZstdLevel int `yaml:"zstd_level,omitempty"`

	// Inflate removes zstd supercompression from inputs before merging.
	Inflate bool `yaml:"inflate,omitempty"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %q", path)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %q", path)
	}
	m.resolve(filepath.Dir(path))

	return m, nil
}

// Parse decodes and validates manifest YAML. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks required fields and value ranges.
func (m *Manifest) Validate() error {
	if m.Output == "" {
		return ErrNoOutput
	}
	if len(m.Layers) == 0 {
		return ErrNoLayers
	}
	for i, layer := range m.Layers {
		if layer == "" {
			return errors.Wrapf(ErrEmptyLayer, "layer %d", i)
		}
	}
	if m.ZstdLevel != 0 && (m.ZstdLevel < ktx2.MinZstdLevel || m.ZstdLevel > ktx2.MaxZstdLevel) {
		return errors.Wrapf(ktx2.ErrInvalidZstdLevel, "zstd_level %d", m.ZstdLevel)
	}

	return nil
}

func (m *Manifest) resolve(dir string) {
	m.Output = resolvePath(dir, m.Output)
	for i, layer := range m.Layers {
		m.Layers[i] = resolvePath(dir, layer)
	}
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}
