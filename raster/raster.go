/*
Package raster provides the 24-bit RGB image exchanged with the RQ codec.
*/
package raster

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"
)

const (
	bytesPerPixel = 3

	// MaxDimension is the largest width or height an RQ image can hold
	MaxDimension = 1<<16 - 1
)

// RGB is an in-memory image whose At method returns color.RGBA values with
// alpha always fully opaque.
type RGB struct {
	// Pix holds the image's pixels, in R, G, B order. The pixel at (x, y)
	// starts at Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*3].
	Pix []uint8
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// NewRGB returns a new RGB image with the given bounds.
func NewRGB(r image.Rectangle) *RGB {
	return &RGB{
		Pix:    make([]uint8, bytesPerPixel*r.Dx()*r.Dy()),
		Stride: bytesPerPixel * r.Dx(),
		Rect:   r,
	}
}

func (p *RGB) ColorModel() color.Model { return color.RGBAModel }

func (p *RGB) Bounds() image.Rectangle { return p.Rect }

func (p *RGB) At(x, y int) color.Color {
	return p.RGBAt(x, y)
}

// RGBAt returns the color of the pixel at (x, y) as color.RGBA.
func (p *RGB) RGBAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+bytesPerPixel : i+bytesPerPixel]
	return color.RGBA{s[0], s[1], s[2], 0xff}
}

// PixOffset returns the index of the first element of Pix that corresponds
// to the pixel at (x, y).
func (p *RGB) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*bytesPerPixel
}

func (p *RGB) Set(x, y int, c color.Color) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	p.SetRGB(x, y, n.R, n.G, n.B)
}

// SetRGB sets the pixel at (x, y) to the given channel values.
func (p *RGB) SetRGB(x, y int, r, g, b uint8) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+bytesPerPixel : i+bytesPerPixel]
	s[0] = r
	s[1] = g
	s[2] = b
}

// Opaque is always true, there is no alpha channel.
func (p *RGB) Opaque() bool { return true }

// FromImage copies m into a new RGB image whose top-left corner is at (0, 0).
// Any alpha channel is discarded, keeping the straight (non-premultiplied)
// color values.
func FromImage(m image.Image) *RGB {
	b := m.Bounds()
	dst := NewRGB(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch src := m.(type) {
	case *RGB:
		for y := 0; y < b.Dy(); y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[i:i+dst.Stride])
		}
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := src.NRGBAAt(b.Min.X+x, b.Min.Y+y)
				dst.SetRGB(x, y, c.R, c.G, c.B)
			}
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				dst.Set(x, y, m.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	}

	return dst
}

// ToRGBA returns a copy of p as an *image.RGBA, which most encoders handle
// directly.
func (p *RGB) ToRGBA() *image.RGBA {
	dst := image.NewRGBA(p.Rect)
	draw.Draw(dst, p.Rect, p, p.Rect.Min, draw.Src)
	return dst
}

// Fit scales m down, preserving its aspect ratio, so it is no wider than
// maxWidth and no taller than maxHeight. A limit of zero or one larger than
// MaxDimension means MaxDimension. Images that already fit are returned
// unchanged.
func Fit(m image.Image, maxWidth, maxHeight int) image.Image {
	if maxWidth <= 0 || maxWidth > MaxDimension {
		maxWidth = MaxDimension
	}
	if maxHeight <= 0 || maxHeight > MaxDimension {
		maxHeight = MaxDimension
	}

	b := m.Bounds()
	if b.Dx() <= maxWidth && b.Dy() <= maxHeight {
		return m
	}

	return resize.Thumbnail(uint(maxWidth), uint(maxHeight), m, resize.Lanczos3)
}
