package rq

import (
	"errors"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/rq/mask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0755))

	writePNG(t, filepath.Join(dir, "a.png"), gradient(4, 4))
	writePNG(t, filepath.Join(dir, "sub", "b.png"), gradient(6, 2))
	writePNG(t, filepath.Join(dir, ".hidden", "c.png"), gradient(2, 2))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))

	c := New(nil, nil, WithWorkers(2))
	require.NoError(t, c.Scan(dir, EncodeOptions{Mask: mask.MustParse("664")}))

	a := readPacked(t, filepath.Join(dir, "a.rq"))
	assert.Equal(t, mask.MustParse("664"), a.Mask)
	assert.Equal(t, uint16(4), a.Width)

	b := readPacked(t, filepath.Join(dir, "sub", "b.rq"))
	assert.Equal(t, uint16(6), b.Width)
	assert.Equal(t, uint16(2), b.Height)

	_, err := os.Stat(filepath.Join(dir, ".hidden", "c.rq"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "notes.rq"))
	assert.True(t, os.IsNotExist(err))
}

func TestScanErrors(t *testing.T) {
	dir := t.TempDir()
	c := New(nil, nil)

	assert.Error(t, c.Scan(filepath.Join(dir, "missing"), EncodeOptions{}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.png"), []byte("not a png"), 0644))
	assert.Error(t, c.Scan(filepath.Join(dir, "file.png"), EncodeOptions{}))
	assert.Error(t, c.Scan(dir, EncodeOptions{}))
}

func TestScanOutputCollision(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), gradient(4, 4))

	f, err := os.Create(filepath.Join(dir, "a.jpg"))
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, gradient(4, 4), nil))
	require.NoError(t, f.Close())

	c := New(nil, nil, WithWorkers(2))
	err = c.Scan(dir, EncodeOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutputCollision), "got %v", err)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "dir/image.rq", outputPath("dir/image.png"))
	assert.Equal(t, "dir.d/image.rq", outputPath("dir.d/image.jpeg"))
}
