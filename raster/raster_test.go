package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAt(t *testing.T) {
	m := NewRGB(image.Rect(0, 0, 2, 2))
	m.SetRGB(1, 0, 10, 20, 30)
	assert.Equal(t, color.RGBA{10, 20, 30, 0xff}, m.At(1, 0))
	assert.Equal(t, []uint8{0, 0, 0, 10, 20, 30}, m.Pix[:6])

	// Out of bounds is ignored
	m.SetRGB(2, 2, 1, 1, 1)
	assert.Equal(t, color.RGBA{}, m.RGBAt(2, 2))
	assert.True(t, m.Opaque())
}

func TestSetDropsAlpha(t *testing.T) {
	m := NewRGB(image.Rect(0, 0, 1, 1))
	m.Set(0, 0, color.NRGBA{200, 100, 50, 0x80})
	assert.Equal(t, color.RGBA{200, 100, 50, 0xff}, m.RGBAt(0, 0))
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.SetNRGBA(5, 5, color.NRGBA{1, 2, 3, 0})
	src.SetNRGBA(6, 5, color.NRGBA{255, 128, 64, 255})

	m := FromImage(src)
	assert.Equal(t, image.Rect(0, 0, 2, 1), m.Bounds())
	assert.Equal(t, []uint8{1, 2, 3, 255, 128, 64}, m.Pix)

	rgba := image.NewRGBA(image.Rect(0, 0, 1, 1))
	rgba.SetRGBA(0, 0, color.RGBA{9, 8, 7, 255})
	assert.Equal(t, []uint8{9, 8, 7}, FromImage(rgba).Pix)

	again := FromImage(m)
	assert.Equal(t, m, again)

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{77})
	assert.Equal(t, []uint8{77, 77, 77}, FromImage(gray).Pix)
}

func TestFromImageSubImage(t *testing.T) {
	m := NewRGB(image.Rect(0, 0, 3, 3))
	m.SetRGB(1, 1, 1, 2, 3)
	m.SetRGB(2, 2, 4, 5, 6)

	sub := &RGB{Pix: m.Pix[m.PixOffset(1, 1):], Stride: m.Stride, Rect: image.Rect(1, 1, 3, 3)}
	out := FromImage(sub)
	assert.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds())
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, out.RGBAt(0, 0))
	assert.Equal(t, color.RGBA{4, 5, 6, 255}, out.RGBAt(1, 1))
}

func TestToRGBA(t *testing.T) {
	m := NewRGB(image.Rect(0, 0, 1, 1))
	m.SetRGB(0, 0, 3, 4, 5)
	assert.Equal(t, []uint8{3, 4, 5, 255}, m.ToRGBA().Pix)
}

func TestFit(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 40, 20))

	assert.Equal(t, image.Image(m), Fit(m, 0, 0))
	assert.Equal(t, image.Image(m), Fit(m, 40, 20))

	out := Fit(m, 10, 10)
	require.NotNil(t, out)
	assert.Equal(t, 10, out.Bounds().Dx())
	assert.Equal(t, 5, out.Bounds().Dy())
}
