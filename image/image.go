/*
Package image implements an RQ image decoder and encoder.

Each pixel is truncated to a 16-bit word according to a channel mask, see
package mask, and stored uncompressed after a 9 byte header, see package
packed. Importing this package registers the "rq" format with the standard
library image package so image.Decode recognises RQ files.
*/
package image

import (
	"image"
	"io"

	"github.com/bodgit/rq/codec"
	"github.com/bodgit/rq/mask"
	"github.com/bodgit/rq/packed"
	"github.com/bodgit/rq/raster"
)

// Name is the format name registered with the image package.
const Name = "rq"

// Bytes 0 and 1 of every file.
const magic = "RQ"

func init() {
	image.RegisterFormat(Name, magic, Decode, DecodeConfig)
}

// Options are the encoding parameters.
type Options struct {
	// Mask selects the channel bit allocation; the zero value means
	// mask.Default.
	Mask mask.Mask
}

// DecodeOptions are the decoding parameters.
type DecodeOptions struct {
	// Augment selects the fixed 5/6/5 reconstruction instead of
	// proportional scaling.
	Augment bool
}

// Decode reads an RQ image from r and returns it as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	return DecodeWithOptions(r, nil)
}

// DecodeWithOptions is like Decode but allows choosing the reconstruction.
func DecodeWithOptions(r io.Reader, o *DecodeOptions) (image.Image, error) {
	p, err := packed.Read(r)
	if err != nil {
		return nil, err
	}

	var augment bool
	if o != nil {
		augment = o.Augment
	}

	m, err := codec.Decode(p, augment)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeConfig returns the color model and dimensions of an RQ image without
// decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	c, err := packed.DecodeConfig(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: (&raster.RGB{}).ColorModel(),
		Width:      int(c.Width),
		Height:     int(c.Height),
	}, nil
}

// Encode writes the Image m to w in RQ format. Any Image may be encoded, but
// alpha is discarded and the image must be no larger than 65535 pixels in
// either direction. If o is nil the default 5/6/5 mask is used.
func Encode(w io.Writer, m image.Image, o *Options) error {
	msk := mask.Default
	if o != nil && o.Mask != (mask.Mask{}) {
		msk = o.Mask
	}

	src, ok := m.(*raster.RGB)
	if !ok {
		src = raster.FromImage(m)
	}

	p, err := codec.Encode(src, msk)
	if err != nil {
		return err
	}

	_, err = p.WriteTo(w)
	return err
}
