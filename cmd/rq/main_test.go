package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bodgit/rq"
	"github.com/bodgit/rq/mask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func testApp() (*cli.App, *bytes.Buffer) {
	app := newApp()
	out := new(bytes.Buffer)
	app.Writer = out
	app.ErrWriter = out
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app, out
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	m := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := range m.Pix {
		m.Pix[i] = uint8(i * 8)
	}
	m.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})

	b := new(bytes.Buffer)
	require.NoError(t, png.Encode(b, m))
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0644))
}

func TestEncodeDecodeCommands(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writePNG(t, in)

	app, _ := testApp()
	require.NoError(t, app.Run([]string{"rq", "encode", "-i", in, "-o", filepath.Join(dir, "in.rq"), "-m", "664"}))

	app, out := testApp()
	require.NoError(t, app.Run([]string{"rq", "info", filepath.Join(dir, "in.rq")}))
	assert.Contains(t, out.String(), "mask:   664")
	assert.Contains(t, out.String(), "width:  4")
	assert.Contains(t, out.String(), "size:   25 bytes (expected 25)")

	app, _ = testApp()
	require.NoError(t, app.Run([]string{"rq", "decode", "-i", filepath.Join(dir, "in.rq"), "-o", filepath.Join(dir, "out.png"), "-a"}))

	_, err := os.Stat(filepath.Join(dir, "out.png"))
	assert.NoError(t, err)
}

func TestConfigAndCatalog(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"))

	cfg := filepath.Join(dir, "rq.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("mask: \"808\"\nworkers: 2\ndb: "+filepath.Join(dir, "rq.db")+"\n"), 0600))

	app, _ := testApp()
	require.NoError(t, app.Run([]string{"rq", "--config", cfg, "scan", dir}))

	b, err := os.ReadFile(filepath.Join(dir, "a.rq"))
	require.NoError(t, err)
	assert.Equal(t, []byte{8, 0, 8}, b[2:5])

	app, out := testApp()
	require.NoError(t, app.Run([]string{"rq", "--config", cfg, "catalog"}))
	assert.Contains(t, out.String(), "a.png")
	assert.Contains(t, out.String(), "808")
}

func TestCatalogWithoutDB(t *testing.T) {
	app, _ := testApp()
	err := app.Run([]string{"rq", "catalog"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no catalog database")
}

func TestMaskErrorIsHighlighted(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writePNG(t, in)

	app, _ := testApp()
	err := app.Run([]string{"rq", "encode", "-i", in, "-o", filepath.Join(dir, "in.rq"), "-m", "590"})
	require.Error(t, err)

	exitErr, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, 1, exitErr.ExitCode())

	lines := strings.Split(err.Error(), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, mask.ErrInvalidDigit.Error(), lines[0])
	assert.Equal(t, "  590", lines[2])
	assert.Equal(t, "   ^", lines[3])

	_, statErr := os.Stat(filepath.Join(dir, "in.rq"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDescribe(t *testing.T) {
	_, err := mask.Parse("5650")
	assert.Equal(t, "mask: must be exactly three digits\n\n  5650\n  ^^^^", describe(err))

	err = rq.ValidateEncode("in.png", "out.bmp")
	assert.Equal(t, "unsupported file format: out.bmp\n\n  out.bmp\n      ^^^\n\nhelp: It should be rq", describe(err))

	err = rq.ValidateEncode("in", "out.rq")
	assert.True(t, strings.HasPrefix(describe(err), "unsupported file format: in\n\n  in\n    ^\n\nhelp: Supported extensions: "))

	assert.Equal(t, "boom", describe(errors.New("boom")))
}
