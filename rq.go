/*
Package rq is a library for converting images to and from the RQ format, a
lossy format storing every pixel in 16 bits split between the red, green and
blue channels according to a configurable mask.
*/
package rq

import (
	"io"
	"log"
)

const defaultWorkers = 10

// Converter reads and writes image files. If it has a catalog, encoded
// images are cached in it and reused when the same source is encoded again.
type Converter struct {
	catalog *Catalog
	logger  *log.Logger
	workers int
}

// Option configures a Converter
type Option func(*Converter)

// WithWorkers sets the number of concurrent encoders used by Scan
func WithWorkers(n int) Option {
	return func(c *Converter) {
		if n > 0 {
			c.workers = n
		}
	}
}

// New returns a Converter. catalog may be nil. A nil logger discards
// everything.
func New(catalog *Catalog, logger *log.Logger, options ...Option) *Converter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c := &Converter{
		catalog: catalog,
		logger:  logger,
		workers: defaultWorkers,
	}
	for _, o := range options {
		o(c)
	}
	return c
}
