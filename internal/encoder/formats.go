package encoder

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// DefaultQuality is used when a caller passes a quality outside 1-100.
const DefaultQuality = 80

// writeFunc streams img to w.  Lossless formats ignore quality.
type writeFunc func(w io.Writer, img image.Image, quality int) error

// fileEncoder adapts a stdlib or x/image writer to Encoder.
type fileEncoder struct {
	format string
	exts   []string
	write  writeFunc
}

func (e *fileEncoder) Format() string       { return e.format }
func (e *fileEncoder) Extensions() []string { return e.exts }

func (e *fileEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	// Placeholders are a few dozen pixels; 4 bytes per pixel plus headers
	// bounds every format here.
	var buf bytes.Buffer
	b := img.Bounds()
	buf.Grow(b.Dx()*b.Dy()*4 + 1024)
	if err := e.write(&buf, img, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// builtin lists every encoder in priority order.
func builtin() []Encoder {
	return []Encoder{
		&fileEncoder{format: "png", exts: []string{"png"}, write: writePNG},
		&fileEncoder{format: "jpeg", exts: []string{"jpeg", "jpg"}, write: writeJPEG},
		&fileEncoder{format: "gif", exts: []string{"gif"}, write: writeGIF},
		&fileEncoder{format: "bmp", exts: []string{"bmp"}, write: writeBMP},
		&fileEncoder{format: "tiff", exts: []string{"tiff", "tif"}, write: writeTIFF},
	}
}

func writePNG(w io.Writer, img image.Image, _ int) error {
	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

func writeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

// writeGIF palettises with Plan9 and Floyd-Steinberg dithering, which hides
// banding in the smooth gradients a placeholder consists of.
func writeGIF(w io.Writer, img image.Image, _ int) error {
	return gif.Encode(w, img, &gif.Options{NumColors: 256})
}

func writeBMP(w io.Writer, img image.Image, _ int) error {
	return bmp.Encode(w, img)
}

func writeTIFF(w io.Writer, img image.Image, _ int) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}
