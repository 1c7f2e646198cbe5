// Package blurhash implements the BlurHash placeholder codec: a small RGB
// raster is reduced to a few cosine-basis components, quantised, and written
// as a short base-83 string that decodes back into a blurred approximation
// at any resolution.
//
// Layout of an encoded hash (all digits base 83):
//
//	[0]      size flag   = (xComponents-1) + (yComponents-1)*9
//	[1]      AC maximum  = clamp(floor(max*166 - 0.5), 0, 82)
//	[2:6]    DC          = R<<16 | G<<8 | B, sRGB-encoded
//	[6:]     2 digits per AC term, row-major, R*19*19 + G*19 + B
//
// Every function is a pure function of its arguments; the package keeps no
// mutable state, so concurrent calls are safe as long as callers do not
// share output buffers.
package blurhash

import (
	"fmt"
	"image"
	"math"
)

// Component count limits per axis.
const (
	MinComponents = 1
	MaxComponents = 9
)

// EncodedLen returns the length of a hash with the given component counts.
func EncodedLen(xComponents, yComponents int) int {
	return 4 + 2*xComponents*yComponents
}

// Encode computes the blur hash of a packed RGB raster.  rgb holds 3 bytes
// per pixel; rows start every bytesPerRow bytes, which may exceed width*3
// when the raster is a sub-rectangle of a larger buffer.
func Encode(xComponents, yComponents, width, height int, rgb []byte, bytesPerRow int) (string, error) {
	if xComponents < MinComponents || xComponents > MaxComponents ||
		yComponents < MinComponents || yComponents > MaxComponents {
		return "", fmt.Errorf("%w: got %dx%d", ErrInvalidComponentCount, xComponents, yComponents)
	}
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	if bytesPerRow < width*3 {
		return "", fmt.Errorf("%w: row stride %d < %d", ErrBufferTooSmall, bytesPerRow, width*3)
	}
	if need := (height-1)*bytesPerRow + width*3; len(rgb) < need {
		return "", fmt.Errorf("%w: have %d bytes, need %d", ErrBufferTooSmall, len(rgb), need)
	}

	factors := multiplyBasis(xComponents, yComponents, width, height, rgb, bytesPerRow)

	buf := make([]byte, 0, EncodedLen(xComponents, yComponents))
	buf = AppendBase83(buf, (xComponents-1)+(yComponents-1)*9, 1)

	ac := factors[3:]
	maxValue := 1.0
	if len(ac) > 0 {
		var actualMax float64
		for _, v := range ac {
			actualMax = math.Max(actualMax, math.Abs(v))
		}
		// Both sides work with the quantised maximum, not the measured one.
		q := clampInt(int(math.Floor(actualMax*166-0.5)), 0, 82)
		maxValue = float64(q+1) / 166
		buf = AppendBase83(buf, q, 1)
	} else {
		buf = AppendBase83(buf, 0, 1)
	}

	buf = AppendBase83(buf, encodeDC(factors[0], factors[1], factors[2]), 4)
	for i := 0; i < len(ac); i += 3 {
		buf = AppendBase83(buf, encodeAC(ac[i], ac[i+1], ac[i+2], maxValue), 2)
	}
	return string(buf), nil
}

// EncodeImage computes the blur hash of img.  Alpha is discarded; colour is
// taken non-premultiplied.  Large images should be downscaled first: cost is
// proportional to pixels × components.
func EncodeImage(img image.Image, xComponents, yComponents int) (string, error) {
	rgb, w, h := packRGB(img)
	return Encode(xComponents, yComponents, w, h, rgb, w*3)
}

// multiplyBasis returns the component grid as consecutive RGB triples,
// row-major, DC first.
func multiplyBasis(nx, ny, width, height int, rgb []byte, bytesPerRow int) []float64 {
	factors := make([]float64, nx*ny*3)
	cosX := cosTable(nx, width)
	cosY := cosTable(ny, height)

	for y := 0; y < height; y++ {
		row := rgb[y*bytesPerRow : y*bytesPerRow+width*3]
		for x := 0; x < width; x++ {
			r := sRGBToLinear(row[3*x])
			g := sRGBToLinear(row[3*x+1])
			b := sRGBToLinear(row[3*x+2])
			for j := 0; j < ny; j++ {
				fy := cosY[j*height+y]
				for i := 0; i < nx; i++ {
					basis := fy * cosX[i*width+x]
					k := (j*nx + i) * 3
					factors[k] += basis * r
					factors[k+1] += basis * g
					factors[k+2] += basis * b
				}
			}
		}
	}

	n := float64(width * height)
	for k := range factors {
		if k < 3 {
			factors[k] /= n
		} else {
			factors[k] *= 2 / n
		}
	}
	return factors
}

// cosTable returns cos(π·c·p/size) for c in [0, n) and p in [0, size),
// laid out as n rows of size entries.
func cosTable(n, size int) []float64 {
	t := make([]float64, n*size)
	for c := 0; c < n; c++ {
		s := math.Pi * float64(c) / float64(size)
		for p := 0; p < size; p++ {
			t[c*size+p] = math.Cos(s * float64(p))
		}
	}
	return t
}

func encodeDC(r, g, b float64) int {
	return linearToSRGB(r)<<16 | linearToSRGB(g)<<8 | linearToSRGB(b)
}

func encodeAC(r, g, b, maxValue float64) int {
	quant := func(v float64) int {
		return clampInt(int(math.Floor(signPow(v/maxValue, 0.5)*9+9.5)), 0, 18)
	}
	return quant(r)*19*19 + quant(g)*19 + quant(b)
}
