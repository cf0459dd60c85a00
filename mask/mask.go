/*
Package mask implements the channel bit allocation used by the RQ format.

A mask is written as three decimal digits giving the number of bits kept for
the red, green and blue channels in that order, for example "565" or "808".
Each channel can keep at most 8 bits and the three must add up to exactly 16
so that every pixel fills one 16-bit word.
*/
package mask

import (
	"errors"
	"fmt"
)

const (
	channels    = 3
	maxBits     = 8
	wordBits    = 16
	defaultSpec = "565"
)

var (
	// ErrInvalidSize is returned when the mask is not exactly three digits
	ErrInvalidSize = errors.New("mask: must be exactly three digits")
	// ErrInvalidDigit is returned when a channel asks for more than 8 bits
	ErrInvalidDigit = errors.New("mask: channel cannot use more than 8 bits")
	// ErrInvalidSum is returned when the channels do not add up to 16 bits
	ErrInvalidSum = errors.New("mask: channels must add up to 16 bits")
)

// Mask is the number of bits kept for each channel.
type Mask struct {
	Red, Green, Blue uint8
}

// Default is the classic 5/6/5 allocation.
var Default = Mask{5, 6, 5}

// DefaultString is Default written as a mask specification.
const DefaultString = defaultSpec

// Error records a failed parse along with the part of the input responsible
// for it.
type Error struct {
	Input  string
	Offset int
	Length int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Input)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Parse validates s and returns the mask it describes.
func Parse(s string) (Mask, error) {
	if len(s) != channels {
		return Mask{}, &Error{Input: s, Offset: 0, Length: len(s), Err: ErrInvalidSize}
	}

	var bits [channels]uint8
	for i := 0; i < channels; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return Mask{}, &Error{Input: s, Offset: i, Length: 1, Err: ErrInvalidSize}
		}
		bits[i] = c - '0'
	}

	for i, b := range bits {
		if b > maxBits {
			return Mask{}, &Error{Input: s, Offset: i, Length: 1, Err: ErrInvalidDigit}
		}
	}

	m := Mask{bits[0], bits[1], bits[2]}
	if m.sum() != wordBits {
		return Mask{}, &Error{Input: s, Offset: 0, Length: channels, Err: ErrInvalidSum}
	}

	return m, nil
}

// MustParse is like Parse but panics if s is not a valid mask. It is meant
// for constants and tests.
func MustParse(s string) Mask {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Mask) sum() int {
	return int(m.Red) + int(m.Green) + int(m.Blue)
}

// Validate checks an already constructed mask, such as one read from a file
// header.
func (m Mask) Validate() error {
	if m.Red > maxBits || m.Green > maxBits || m.Blue > maxBits {
		return ErrInvalidDigit
	}
	if m.sum() != wordBits {
		return ErrInvalidSum
	}
	return nil
}

// String returns the mask as three digits, e.g. "565".
func (m Mask) String() string {
	return fmt.Sprintf("%d%d%d", m.Red, m.Green, m.Blue)
}
