/*
Package codec converts between 24-bit RGB rasters and packed RQ images.

Encoding keeps the most significant bits of each 8-bit channel as directed by
the mask and packs them into one 16-bit word with red in the high bits, then
green, then blue. A channel allotted no bits contributes nothing.

Decoding extracts the same fields and scales each one back to 0-255 with
v * 255 / (2^bits - 1), rounded down. Alternatively the augment
reconstruction multiplies red and blue by 8 and green by 4, which only undoes
a 5/6/5 truncation. With any other mask it produces the wrong brightness and
products above 255 wrap around.
*/
package codec

import (
	"errors"
	"fmt"
	"image"

	"github.com/bodgit/rq/mask"
	"github.com/bodgit/rq/packed"
	"github.com/bodgit/rq/raster"
)

const (
	channelBits = 8

	augmentRedBlue = 8
	augmentGreen   = 4
)

// ErrTooLarge is returned when a raster is wider or taller than the format
// allows.
var ErrTooLarge = errors.New("codec: image is too large")

func truncate(v, bits uint8) uint16 {
	if bits == 0 {
		return 0
	}
	return uint16(v >> (channelBits - bits))
}

// Pack returns the word for a single pixel.
func Pack(m mask.Mask, r, g, b uint8) uint16 {
	var w uint16
	if m.Red > 0 {
		w |= truncate(r, m.Red) << (m.Green + m.Blue)
	}
	if m.Green > 0 {
		w |= truncate(g, m.Green) << m.Blue
	}
	if m.Blue > 0 {
		w |= truncate(b, m.Blue)
	}
	return w
}

func field(w uint16, shift, bits uint8) uint8 {
	if bits == 0 {
		return 0
	}
	return uint8(w >> shift & (1<<bits - 1))
}

// Unpack returns the truncated red, green and blue magnitudes stored in w.
// Each is in the range 0 to 2^bits - 1 for its channel.
func Unpack(m mask.Mask, w uint16) (r, g, b uint8) {
	return field(w, m.Green+m.Blue, m.Red), field(w, m.Blue, m.Green), field(w, 0, m.Blue)
}

// Upscale maps a truncated magnitude of the given bit depth back onto 0-255.
func Upscale(v, bits uint8) uint8 {
	if bits == 0 {
		return 0
	}
	max := uint32(1)<<bits - 1
	return uint8(uint32(v) * 255 / max)
}

// Augment applies the fixed 5/6/5 reconstruction to truncated magnitudes.
func Augment(r, g, b uint8) (uint8, uint8, uint8) {
	return r * augmentRedBlue, g * augmentGreen, b * augmentRedBlue
}

// Encode packs every pixel of src according to m, in row-major order.
func Encode(src *raster.RGB, m mask.Mask) (*packed.Image, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	b := src.Bounds()
	if b.Dx() > raster.MaxDimension || b.Dy() > raster.MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, b.Dx(), b.Dy())
	}

	p := packed.New(m, uint16(b.Dx()), uint16(b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := src.RGBAt(b.Min.X+x, b.Min.Y+y)
			p.Set(x, y, Pack(m, c.R, c.G, c.B))
		}
	}

	return p, nil
}

// Decode reconstructs the raster held in p. When augment is set the fixed
// 5/6/5 reconstruction is used instead of proportional scaling.
func Decode(p *packed.Image, augment bool) (*raster.RGB, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := p.Mask
	w, h := int(p.Width), int(p.Height)
	dst := raster.NewRGB(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := Unpack(m, p.At(x, y))
			if augment {
				r, g, b = Augment(r, g, b)
			} else {
				r, g, b = Upscale(r, m.Red), Upscale(g, m.Green), Upscale(b, m.Blue)
			}
			dst.SetRGB(x, y, r, g, b)
		}
	}

	return dst, nil
}
