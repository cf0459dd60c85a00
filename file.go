package rq

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Extension is the file extension of RQ images
const Extension = "rq"

// Raster formats that can be read when encoding and written when decoding
var supportedExtensions = []string{"png", "bmp", "gif", "jpg", "jpeg", "ppm"}

// ExtensionError is returned when a path does not have the extension its
// role requires.
type ExtensionError struct {
	Path   string
	Advice string
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("unsupported file format: %s", e.Path)
}

// Span returns the offset and length of the extension within Path, not
// counting the dot. A path without an extension gives an empty span at its
// end.
func (e *ExtensionError) Span() (int, int) {
	ext := filepath.Ext(e.Path)
	if ext == "" {
		return len(e.Path), 0
	}
	return len(e.Path) - len(ext) + 1, len(ext) - 1
}

func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func isSupported(path string) bool {
	ext := extension(path)
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func requireRQ(path string) error {
	if extension(path) != Extension {
		return &ExtensionError{
			Path:   path,
			Advice: fmt.Sprintf("It should be %s", Extension),
		}
	}
	return nil
}

func requireRaster(path string) error {
	if !isSupported(path) {
		return &ExtensionError{
			Path:   path,
			Advice: fmt.Sprintf("Supported extensions: %s", strings.Join(supportedExtensions, ", ")),
		}
	}
	return nil
}

// ValidateEncode checks that input is a supported raster image and output is
// an RQ file.
func ValidateEncode(input, output string) error {
	if err := requireRQ(output); err != nil {
		return err
	}
	return requireRaster(input)
}

// ValidateDecode checks that input is an RQ file and output is a supported
// raster image.
func ValidateDecode(input, output string) error {
	if err := requireRQ(input); err != nil {
		return err
	}
	return requireRaster(output)
}
