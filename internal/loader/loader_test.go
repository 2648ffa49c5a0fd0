package loader

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/woozymasta/ktx2"
	"github.com/woozymasta/ktx2/internal/stream"
)

func writeLayer(t *testing.T, path string, seed byte, zstdLevel int) {
	t.Helper()

	size, err := ktx2.BlockAlignedSize(16, 16, 0)
	require.NoError(t, err)

	c := &ktx2.Container{
		PixelWidth:  16,
		PixelHeight: 16,
		FaceCount:   1,
		LevelCount:  1,
		TypeSize:    1,
		DFD:         ktx2.NewUASTCDescriptor(true, false),
		Levels:      []ktx2.Level{{Data: bytes.Repeat([]byte{seed}, size)}},
	}
	if zstdLevel > 0 {
		c, err = ktx2.Supercompress(c, zstdLevel)
		require.NoError(t, err)
	}

	data, err := ktx2.Encode(c)
	require.NoError(t, err)
	require.NoError(t, stream.WriteFile(path, data))
}

func TestLoadKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "a.ktx2"),
		filepath.Join(dir, "b.ktx2.lz4"),
		filepath.Join(dir, "c.ktx2.zst"),
		filepath.Join(dir, "d.ktx2"),
	}
	for i, path := range paths {
		writeLayer(t, path, byte(i+1), 0)
	}

	got, err := Load(context.Background(), paths, Options{Jobs: 3})
	require.NoError(t, err)
	require.Len(t, got, len(paths))
	for i, c := range got {
		require.Equal(t, byte(i+1), c.Levels[0].Data[0], "layer %d", i)
	}
}

func TestLoadInflate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packed.ktx2")
	writeLayer(t, path, 7, 3)

	got, err := Load(context.Background(), []string{path}, Options{Inflate: true})
	require.NoError(t, err)
	require.Equal(t, ktx2.SupercompressionNone, got[0].Supercompression)
	require.Len(t, got[0].Levels[0].Data, 256)

	got, err = Load(context.Background(), []string{path}, Options{})
	require.NoError(t, err)
	require.Equal(t, ktx2.SupercompressionZstd, got[0].Supercompression)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.ktx2")
	writeLayer(t, good, 1, 0)
	bad := filepath.Join(dir, "bad.ktx2")
	require.NoError(t, stream.WriteFile(bad, []byte("not a texture")))

	_, err := Load(context.Background(), []string{good, bad}, Options{Jobs: 2})
	require.ErrorIs(t, err, ktx2.ErrInvalidIdentifier)
	require.Contains(t, err.Error(), "layer 1")

	_, err = Load(context.Background(), []string{filepath.Join(dir, "missing.ktx2")}, Options{})
	require.Error(t, err)
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, []string{"unused.ktx2"}, Options{})
	require.ErrorIs(t, err, context.Canceled)
}
