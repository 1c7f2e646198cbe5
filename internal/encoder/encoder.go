// Package encoder writes decoded placeholders out as standard image files.
package encoder

import (
	"image"
)

// Encoder encodes an image to a specific format.
type Encoder interface {
	// Format returns the output format name (e.g. "png", "jpeg").
	Format() string

	// Encode converts the image to bytes.  quality (1-100) is honoured by
	// lossy formats and ignored by the rest.
	Encode(img image.Image, quality int) ([]byte, error)

	// Extensions returns the accepted file extensions without dot; the
	// first one is used for new files.
	Extensions() []string
}
