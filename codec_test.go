package ktx2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"testing/iotest"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	in := testLayer(40, 24, 4, 0x30, 0)
	in.SGD = nil

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !IsKTX2(data) {
		t.Fatalf("encoded data lacks identifier")
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.PixelWidth != 40 || got.PixelHeight != 24 || got.LevelCount != 4 || got.FaceCount != 1 || got.TypeSize != 1 {
		t.Fatalf("header mismatch: %+v", got)
	}
	if !bytes.Equal(got.DFD, in.DFD) {
		t.Fatalf("DFD mismatch")
	}
	if len(got.KeyValues) != len(in.KeyValues) {
		t.Fatalf("KeyValues = %v, want %v", got.KeyValues, in.KeyValues)
	}
	for i, kv := range got.KeyValues {
		if kv.Key != in.KeyValues[i].Key || !bytes.Equal(kv.Value, in.KeyValues[i].Value) {
			t.Fatalf("KeyValues[%d] = %q=%q", i, kv.Key, kv.Value)
		}
	}
	for level := range in.Levels {
		if !bytes.Equal(got.Levels[level].Data, in.Levels[level].Data) {
			t.Fatalf("level %d data mismatch", level)
		}
		if got.Levels[level].UncompressedByteLength != uint64(len(in.Levels[level].Data)) {
			t.Fatalf("level %d uncompressed length %d", level, got.Levels[level].UncompressedByteLength)
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	t.Parallel()

	in := testLayer(8, 8, 2, 1, 0)
	in.KeyValues = []KeyValue{{Key: "a", Value: []byte{1}}}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	le := binary.LittleEndian
	idx := data[headerSize:]
	dfdOffset := le.Uint32(idx[0:])
	kvdOffset := le.Uint32(idx[8:])
	kvdLength := le.Uint32(idx[12:])
	if want := uint32(headerSize + indexSize + 2*levelIndexSize); dfdOffset != want {
		t.Fatalf("dfdByteOffset = %d, want %d", dfdOffset, want)
	}
	// 4 length + "a" + NUL + 1 value byte, padded to 8.
	if kvdLength != 8 || kvdOffset%4 != 0 {
		t.Fatalf("kvd offset/length = %d/%d", kvdOffset, kvdLength)
	}

	levelIndex := data[headerSize+indexSize:]
	offset0 := le.Uint64(levelIndex[0:])
	offset1 := le.Uint64(levelIndex[levelIndexSize:])
	if offset1 >= offset0 {
		t.Fatalf("smaller level must be stored first: level0 at %d, level1 at %d", offset0, offset1)
	}
	if offset0%16 != 0 || offset1%16 != 0 {
		t.Fatalf("levels not 16-byte aligned: %d %d", offset0, offset1)
	}
}

func TestMergedArrayRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []*Container{testLayer(32, 32, 6, 1, 3), testLayer(32, 32, 6, 2, 0), testLayer(32, 32, 6, 3, 1)}
	merged, err := MergeArray(inputs, quietOptions())
	if err != nil {
		t.Fatalf("MergeArray: %v", err)
	}

	path := filepath.Join(t.TempDir(), "array.ktx2")
	if err := Write(merged, path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.LayerCount != 3 || got.Layers() != 3 {
		t.Fatalf("LayerCount = %d, want 3", got.LayerCount)
	}
	for level := range merged.Levels {
		if !bytes.Equal(got.Levels[level].Data, merged.Levels[level].Data) {
			t.Fatalf("level %d data mismatch", level)
		}
	}
	if got.SGD != nil {
		t.Fatalf("SGD = %v, want nil", got.SGD)
	}
}

func TestEncodeZstdKeepsDeclaredLength(t *testing.T) {
	t.Parallel()

	in := testZstdLayer(16, 16, 7, 33, 256)
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Levels[0].UncompressedByteLength != 256 || len(got.Levels[0].Data) != 33 {
		t.Fatalf("level = %d bytes, %d uncompressed", len(got.Levels[0].Data), got.Levels[0].UncompressedByteLength)
	}
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Container)
		wantErr error
	}{
		{name: "level-count", mutate: func(c *Container) { c.Levels = c.Levels[:1] }, wantErr: ErrLevelCountMismatch},
		{name: "zero-width", mutate: func(c *Container) { c.PixelWidth = 0 }, wantErr: ErrInvalidHeader},
		{name: "too-many-levels", mutate: func(c *Container) { c.LevelCount = 9 }, wantErr: ErrTooManyLevels},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := testLayer(16, 16, 2, 0, 0)
			tc.mutate(c)
			if _, err := Encode(c); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	valid, err := Encode(testLayer(16, 16, 2, 0, 0))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	le := binary.LittleEndian
	tests := []struct {
		name    string
		data    func() []byte
		wantErr error
	}{
		{
			name:    "identifier",
			data:    func() []byte { return []byte("DDS |not a ktx2 file at all") },
			wantErr: ErrInvalidIdentifier,
		},
		{
			name:    "short-header",
			data:    func() []byte { return bytes.Clone(valid[:40]) },
			wantErr: ErrHeaderTruncated,
		},
		{
			name: "short-level-index",
			data: func() []byte {
				return bytes.Clone(valid[:headerSize+indexSize+levelIndexSize])
			},
			wantErr: ErrHeaderTruncated,
		},
		{
			name: "level-range",
			data: func() []byte {
				d := bytes.Clone(valid)
				le.PutUint64(d[headerSize+indexSize+8:], uint64(len(d)))
				return d
			},
			wantErr: ErrInvalidLevelIndex,
		},
		{
			name: "dfd-range",
			data: func() []byte {
				d := bytes.Clone(valid)
				le.PutUint32(d[headerSize:], uint32(len(d)))
				return d
			},
			wantErr: ErrInvalidIndex,
		},
		{
			name: "kvd-entry-length",
			data: func() []byte {
				d := bytes.Clone(valid)
				kvdOffset := le.Uint32(d[headerSize+8:])
				le.PutUint32(d[kvdOffset:], 0xFFFF)
				return d
			},
			wantErr: ErrInvalidKeyValue,
		},
		{
			name: "face-count",
			data: func() []byte {
				d := bytes.Clone(valid)
				le.PutUint32(d[12+24:], 3)
				return d
			},
			wantErr: ErrInvalidHeader,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Decode(tc.data()); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSetValueKeepsOrder(t *testing.T) {
	t.Parallel()

	c := &Container{}
	c.SetValue("KTXwriter", []byte("b"))
	c.SetValue("KTXorientation", []byte("rd"))
	c.SetValue("KTXwriter", []byte("c"))

	if len(c.KeyValues) != 2 || c.KeyValues[0].Key != "KTXorientation" || c.KeyValues[1].Key != "KTXwriter" {
		t.Fatalf("KeyValues = %v", c.KeyValues)
	}
	if v, _ := c.Value("KTXwriter"); string(v) != "c" {
		t.Fatalf("KTXwriter = %q", v)
	}
	if _, ok := c.Value("missing"); ok {
		t.Fatalf("unexpected value for missing key")
	}
}

func TestBlockAlignedSizeTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		w, h  uint32
		level int
		want  int
	}{
		{name: "64x64-l0", w: 64, h: 64, level: 0, want: 4096},
		{name: "64x64-l4", w: 64, h: 64, level: 4, want: 16},
		{name: "64x64-l6", w: 64, h: 64, level: 6, want: 16},
		{name: "5x7-l0", w: 5, h: 7, level: 0, want: 64},
		{name: "100x60-l1", w: 100, h: 60, level: 1, want: 13 * 8 * 16},
		{name: "1x1-l0", w: 1, h: 1, level: 0, want: 16},
		{name: "deep-level", w: 8, h: 8, level: 40, want: 16},
		{name: "16384x16384-l0", w: 16384, h: 16384, level: 0, want: 1 << 28},
		{name: "max-l18", w: 0xFFFFFFFF, h: 0xFFFFFFFF, level: 18, want: 1 << 28},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := BlockAlignedSize(tc.w, tc.h, tc.level)
			if err != nil {
				t.Fatalf("BlockAlignedSize(%d,%d,%d): %v", tc.w, tc.h, tc.level, err)
			}
			if got != tc.want {
				t.Fatalf("BlockAlignedSize(%d,%d,%d) = %d, want %d", tc.w, tc.h, tc.level, got, tc.want)
			}
		})
	}
}

func TestBlockAlignedSizeOverflow(t *testing.T) {
	t.Parallel()

	for _, dim := range []uint32{0xFFFFFFFF, 0xC0000000} {
		if size, err := BlockAlignedSize(dim, dim, 0); !errors.Is(err, ErrSizeOverflow) {
			t.Fatalf("BlockAlignedSize(%#x) = %d, %v; want ErrSizeOverflow", dim, size, err)
		}
	}
}

func TestReadFromWriteTo(t *testing.T) {
	t.Parallel()

	in := testLayer(16, 8, 2, 0x50, 0)
	var buf bytes.Buffer
	n, err := WriteTo(&buf, in)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Fatalf("WriteTo wrote %d, buffer holds %d", n, buf.Len())
	}

	got, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	for level := range in.Levels {
		if !bytes.Equal(got.Levels[level].Data, in.Levels[level].Data) {
			t.Fatalf("level %d data mismatch", level)
		}
	}

	if _, err := WriteTo(failingWriter{}, in); !errors.Is(err, ErrWriteFile) {
		t.Fatalf("expected ErrWriteFile, got %v", err)
	}
	if _, err := ReadFrom(iotest.ErrReader(io.ErrUnexpectedEOF)); !errors.Is(err, ErrReadFile) {
		t.Fatalf("expected ErrReadFile, got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrShortWrite }

func TestDescriptorBytesPlane0(t *testing.T) {
	t.Parallel()

	dfd := NewUASTCDescriptor(true, true)
	if len(dfd) != 44 || binary.LittleEndian.Uint32(dfd) != 44 {
		t.Fatalf("descriptor size = %d", len(dfd))
	}
	if n, err := DescriptorBytesPlane0(dfd); err != nil || n != BlockBytes {
		t.Fatalf("DescriptorBytesPlane0 = %d, %v", n, err)
	}
	if _, err := DescriptorBytesPlane0(dfd[:10]); !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
	}
}
