package rq

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/rq/codec"
	"github.com/bodgit/rq/mask"
	"github.com/bodgit/rq/packed"
	"github.com/bodgit/rq/raster"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/spakin/netpbm"
	"golang.org/x/image/bmp"
)

// EncodeOptions control how a raster is converted
type EncodeOptions struct {
	// Mask is the channel allocation, the zero value means mask.Default
	Mask mask.Mask
	// MaxWidth and MaxHeight shrink larger images, preserving the aspect
	// ratio. Zero means the format maximum of 65535.
	MaxWidth  int
	MaxHeight int
}

func (o EncodeOptions) channelMask() mask.Mask {
	if o.Mask == (mask.Mask{}) {
		return mask.Default
	}
	return o.Mask
}

// Info summarises an RQ file
type Info struct {
	Mask   mask.Mask
	Width  int
	Height int
	// Size is the size of the file on disk, Expected is the size the header
	// implies
	Size     int64
	Expected int
}

func readRaster(path string, r io.Reader) (image.Image, error) {
	if extension(path) == "ppm" {
		return netpbm.Decode(r, &netpbm.DecodeOptions{Target: netpbm.PPM})
	}
	m, _, err := image.Decode(r)
	return m, err
}

func writeRaster(path string, w io.Writer, m image.Image) error {
	switch extension(path) {
	case "png":
		return png.Encode(w, m)
	case "bmp":
		return bmp.Encode(w, m)
	case "gif":
		return gif.Encode(w, m, &gif.Options{
			NumColors: 256,
			Quantizer: &quantize.MedianCutQuantizer{},
		})
	case "jpg", "jpeg":
		return jpeg.Encode(w, m, &jpeg.Options{Quality: jpeg.DefaultQuality})
	case "ppm":
		return netpbm.Encode(w, m, &netpbm.EncodeOptions{
			Format:   netpbm.PPM,
			MaxValue: 255,
		})
	default:
		return requireRaster(path)
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}

	return nil
}

func (c *Converter) encode(input string, o EncodeOptions) (*packed.Image, error) {
	b, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}

	key := Key{
		SHA1:      fmt.Sprintf("%X", sha1.Sum(b)),
		Mask:      o.channelMask(),
		MaxWidth:  o.MaxWidth,
		MaxHeight: o.MaxHeight,
	}

	if c.catalog != nil {
		p, err := c.catalog.Find(key)
		if err != nil {
			return nil, err
		}
		if p != nil {
			c.logger.Printf("Using cached encoding of \"%s\" with SHA-1 \"%s\"\n", input, key.SHA1)
			return p, nil
		}
	}

	m, err := readRaster(input, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}

	if fit := raster.Fit(m, o.MaxWidth, o.MaxHeight); fit.Bounds().Size() != m.Bounds().Size() {
		c.logger.Printf("Resized \"%s\" from %v to %v\n", input, m.Bounds().Size(), fit.Bounds().Size())
		m = fit
	}

	p, err := codec.Encode(raster.FromImage(m), key.Mask)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}

	if c.catalog != nil {
		if _, err := c.catalog.Add(key, filepath.Base(input), p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// EncodeFile converts the raster image at input into an RQ file at output
func (c *Converter) EncodeFile(input, output string, o EncodeOptions) error {
	if err := ValidateEncode(input, output); err != nil {
		return err
	}

	p, err := c.encode(input, o)
	if err != nil {
		return err
	}

	if err := writeFile(output, func(w io.Writer) error {
		_, err := p.WriteTo(w)
		return err
	}); err != nil {
		return err
	}

	c.logger.Printf("Encoded \"%s\" to \"%s\" using mask %s\n", input, output, p.Mask)

	return nil
}

// DecodeFile converts the RQ file at input into a raster image at output,
// the format of which is chosen by its extension. augment selects the fixed
// 5/6/5 reconstruction.
func (c *Converter) DecodeFile(input, output string, augment bool) error {
	if err := ValidateDecode(input, output); err != nil {
		return err
	}

	b, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	p := new(packed.Image)
	if err := p.UnmarshalBinary(b); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	m, err := codec.Decode(p, augment)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	if err := writeFile(output, func(w io.Writer) error {
		return writeRaster(output, w, m)
	}); err != nil {
		return err
	}

	c.logger.Printf("Decoded \"%s\" to \"%s\"\n", input, output)

	return nil
}

// Inspect reads the header of the RQ file at input
func (c *Converter) Inspect(input string) (Info, error) {
	if err := requireRQ(input); err != nil {
		return Info{}, err
	}

	f, err := os.Open(input)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Info{}, err
	}

	cfg, err := packed.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", input, err)
	}

	return Info{
		Mask:     cfg.Mask,
		Width:    int(cfg.Width),
		Height:   int(cfg.Height),
		Size:     info.Size(),
		Expected: packed.HeaderSize + 2*int(cfg.Width)*int(cfg.Height),
	}, nil
}
