// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

// Package stream opens and creates files with transparent LZ4 or Zstandard
// framing chosen by file suffix.
package stream

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec is the outer framing of a file.
type Codec int

const (
	// Raw files are read and written as is.
	Raw Codec = iota
	// LZ4 files use the LZ4 frame format (".lz4").
	LZ4
	// Zstd files use the Zstandard frame format (".zst", ".zstd").
	Zstd
)

// String returns the codec name.
func (c Codec) String() string {
	switch c {
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return "raw"
	}
}

// CodecFor picks the codec from the file suffix.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lz4":
		return LZ4
	case ".zst", ".zstd":
		return Zstd
	default:
		return Raw
	}
}

// Open opens path for reading, decompressing it if its suffix asks for it.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", path)
	}

	switch CodecFor(path) {
	case LZ4:
		return &readCloser{Reader: lz4.NewReader(f), file: f}, nil
	case Zstd:
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "zstd reader %q", path)
		}
		return &readCloser{Reader: dec, file: f, release: dec.Close}, nil
	default:
		return f, nil
	}
}

// ReadFile reads the whole decompressed content of path.
func ReadFile(path string) ([]byte, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %q", path)
	}

	return data, nil
}

// Create creates path for writing, compressing it if its suffix asks for it.
// Close flushes the compressor before closing the file.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %q", path)
	}

	switch CodecFor(path) {
	case LZ4:
		return &writeCloser{Writer: lz4.NewWriter(f), file: f}, nil
	case Zstd:
		enc, err := zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "zstd writer %q", path)
		}
		return &writeCloser{Writer: enc, file: f}, nil
	default:
		return f, nil
	}
}

// WriteFile writes data to path through Create.
func WriteFile(path string, data []byte) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "write %q", path)
	}

	return w.Close()
}

type readCloser struct {
	io.Reader
	file    *os.File
	release func()
}

func (r *readCloser) Close() error {
	if r.release != nil {
		r.release()
	}

	return r.file.Close()
}

type writeCloser struct {
	io.Writer
	file *os.File
}

func (w *writeCloser) Close() error {
	var err error
	if c, ok := w.Writer.(io.Closer); ok {
		err = c.Close()
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}

	return errors.Wrap(err, "close")
}
