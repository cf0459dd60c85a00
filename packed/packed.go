/*
Package packed implements the in-memory form of an RQ image and its binary
serialization.

The file is a 9 byte header followed by one 16-bit word per pixel, row by row
from the top left. All integers are little endian:

	offset 0  magic      2 bytes, always 0x5152 ("RQ")
	offset 2  red bits   1 byte
	offset 3  green bits 1 byte
	offset 4  blue bits  1 byte
	offset 5  width      2 bytes
	offset 7  height     2 bytes
	offset 9  pixels     2 bytes each

There is no compression so the resulting file is always 9 + 2*width*height
bytes in size.
*/
package packed

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bodgit/rq/mask"
)

const (
	// Magic identifies an RQ stream
	Magic uint16 = 0x5152

	// HeaderSize is the number of bytes before the first pixel
	HeaderSize = 9

	wordSize = 2
)

var (
	// ErrCorruptHeader is returned when the header is short or invalid
	ErrCorruptHeader = errors.New("packed: corrupt header")
	// ErrTruncatedPayload is returned when there are fewer pixels than the
	// header describes
	ErrTruncatedPayload = errors.New("packed: truncated payload")
	// ErrTrailingData is returned when bytes follow the last pixel
	ErrTrailingData = errors.New("packed: trailing data")
)

// Image is an RQ image. It implements the encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler interfaces.
type Image struct {
	Magic  uint16
	Mask   mask.Mask
	Width  uint16
	Height uint16
	// Pix holds one packed word per pixel, row-major
	Pix []uint16
}

// Config is the header of an RQ image.
type Config struct {
	Mask   mask.Mask
	Width  uint16
	Height uint16
}

// New returns a blank image of the given size ready to be filled with pixels
// packed according to m.
func New(m mask.Mask, width, height uint16) *Image {
	return &Image{
		Magic:  Magic,
		Mask:   m,
		Width:  width,
		Height: height,
		Pix:    make([]uint16, int(width)*int(height)),
	}
}

// Len returns the number of pixels the header describes
func (p *Image) Len() int {
	return int(p.Width) * int(p.Height)
}

// Size returns the number of bytes MarshalBinary produces
func (p *Image) Size() int {
	return HeaderSize + wordSize*p.Len()
}

// At returns the packed word at (x, y)
func (p *Image) At(x, y int) uint16 {
	return p.Pix[y*int(p.Width)+x]
}

// Set stores the packed word for (x, y)
func (p *Image) Set(x, y int, w uint16) {
	p.Pix[y*int(p.Width)+x] = w
}

// Config returns the header fields of the image
func (p *Image) Config() Config {
	return Config{Mask: p.Mask, Width: p.Width, Height: p.Height}
}

// Validate reports whether the image is complete and consistent
func (p *Image) Validate() error {
	if p.Magic != Magic {
		return fmt.Errorf("%w: bad magic %#04x", ErrCorruptHeader, p.Magic)
	}
	if err := p.Mask.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	if len(p.Pix) != p.Len() {
		return fmt.Errorf("%w: have %d pixels, want %d", ErrTruncatedPayload, len(p.Pix), p.Len())
	}
	return nil
}

func (p *Image) header() [HeaderSize]byte {
	var h [HeaderSize]byte
	binary.LittleEndian.PutUint16(h[0:], p.Magic)
	h[2] = p.Mask.Red
	h[3] = p.Mask.Green
	h[4] = p.Mask.Blue
	binary.LittleEndian.PutUint16(h[5:], p.Width)
	binary.LittleEndian.PutUint16(h[7:], p.Height)
	return h
}

// MarshalBinary encodes the image into binary form and returns the result
func (p *Image) MarshalBinary() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	b := bytes.NewBuffer(make([]byte, 0, p.Size()))
	if _, err := p.WriteTo(b); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// WriteTo writes the image to w in binary form
func (p *Image) WriteTo(w io.Writer) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	h := p.header()
	n, err := w.Write(h[:])
	if err != nil {
		return int64(n), err
	}

	b := make([]byte, wordSize*len(p.Pix))
	for i, v := range p.Pix {
		binary.LittleEndian.PutUint16(b[i*wordSize:], v)
	}

	m, err := w.Write(b)

	return int64(n + m), err
}

// UnmarshalBinary decodes the image from binary form
func (p *Image) UnmarshalBinary(b []byte) error {
	c, err := readConfig(bytes.NewReader(b))
	if err != nil {
		return err
	}
	if want := HeaderSize + wordSize*c.len(); len(b) < want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrTruncatedPayload, len(b), want)
	}

	r := bytes.NewReader(b)
	if _, err := p.ReadFrom(r); err != nil {
		return err
	}
	if r.Len() > 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Len())
	}
	return nil
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func readConfig(r io.Reader) (Config, error) {
	var h [HeaderSize]byte
	if err := readFull(r, h[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Config{}, fmt.Errorf("%w: short header", ErrCorruptHeader)
		}
		return Config{}, err
	}

	if magic := binary.LittleEndian.Uint16(h[0:]); magic != Magic {
		return Config{}, fmt.Errorf("%w: bad magic %#04x", ErrCorruptHeader, magic)
	}

	c := Config{
		Mask:   mask.Mask{Red: h[2], Green: h[3], Blue: h[4]},
		Width:  binary.LittleEndian.Uint16(h[5:]),
		Height: binary.LittleEndian.Uint16(h[7:]),
	}
	if err := c.Mask.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}

	return c, nil
}

func (c Config) len() int {
	return int(c.Width) * int(c.Height)
}

// ReadFrom reads exactly one image from r, replacing the contents of p.
// Nothing past the last pixel is consumed. The pixel buffer grows with the
// bytes actually read, not the size the header claims.
func (p *Image) ReadFrom(r io.Reader) (int64, error) {
	c, err := readConfig(r)
	if err != nil {
		return 0, err
	}

	n := c.len()
	want := int64(wordSize * n)

	var buf bytes.Buffer
	got, err := io.CopyN(&buf, r, want)
	if err != nil {
		if err == io.EOF {
			return HeaderSize + got, fmt.Errorf("%w: have %d bytes of pixels, want %d", ErrTruncatedPayload, got, want)
		}
		return HeaderSize + got, err
	}

	b := buf.Bytes()
	pix := make([]uint16, n)
	for i := range pix {
		pix[i] = binary.LittleEndian.Uint16(b[i*wordSize:])
	}

	*p = Image{
		Magic:  Magic,
		Mask:   c.Mask,
		Width:  c.Width,
		Height: c.Height,
		Pix:    pix,
	}

	return HeaderSize + got, nil
}

// Read returns the image read from r.
func Read(r io.Reader) (*Image, error) {
	p := new(Image)
	if _, err := p.ReadFrom(r); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeConfig returns the header of an RQ image without reading the pixels.
func DecodeConfig(r io.Reader) (Config, error) {
	return readConfig(r)
}
