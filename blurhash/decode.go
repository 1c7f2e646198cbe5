package blurhash

import (
	"fmt"
	"image"
	"image/color"
)

// MaxDecodePixels bounds width*height for a single decode.  Larger requests
// fail with ErrAllocationFailure instead of attempting the allocation.
const MaxDecodePixels = 1 << 26

// Components returns the component counts encoded in hash after checking
// that the hash length agrees with them.
func Components(hash string) (xComponents, yComponents int, err error) {
	if len(hash) < 6 {
		return 0, 0, fmt.Errorf("%w: length %d, need at least 6", ErrMalformedHash, len(hash))
	}
	flag, err := decodeBase83(hash, 0, 1)
	if err != nil {
		return 0, 0, err
	}
	xComponents = flag%9 + 1
	yComponents = flag/9 + 1
	if yComponents > MaxComponents {
		return 0, 0, fmt.Errorf("%w: size flag %d out of range", ErrMalformedHash, flag)
	}
	if want := EncodedLen(xComponents, yComponents); len(hash) != want {
		return 0, 0, fmt.Errorf("%w: length %d, want %d for %dx%d components",
			ErrMalformedHash, len(hash), want, xComponents, yComponents)
	}
	return xComponents, yComponents, nil
}

// IsValid reports whether hash is long enough and its length matches the
// component counts in its size flag.  Characters past the size flag are
// checked only when decoding.
func IsValid(hash string) bool {
	_, _, err := Components(hash)
	return err == nil
}

// AverageColor returns the DC term of hash, the average colour of the
// encoded image.
func AverageColor(hash string) (color.NRGBA, error) {
	if _, _, err := Components(hash); err != nil {
		return color.NRGBA{}, err
	}
	dc, err := decodeDCValue(hash)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: uint8(dc >> 16), G: uint8(dc >> 8), B: uint8(dc), A: 255}, nil
}

// Decode renders hash into a new width×height buffer with channels bytes
// per pixel (3 for RGB, 4 for RGBA with opaque alpha).  punch scales the
// AC terms to raise contrast; values below 1 are treated as 1.
func Decode(hash string, width, height int, punch float64, channels int) ([]byte, error) {
	n, err := bufferLen(width, height, channels)
	if err != nil {
		return nil, err
	}
	grid, nx, ny, err := decodeGrid(hash, punch)
	if err != nil {
		return nil, err
	}
	dst := make([]byte, n)
	render(grid, nx, ny, width, height, channels, dst)
	return dst, nil
}

// DecodeInto is Decode writing into a caller-supplied buffer of at least
// width*height*channels bytes.  dst is left untouched on any error.
func DecodeInto(hash string, width, height int, punch float64, channels int, dst []byte) error {
	n, err := bufferLen(width, height, channels)
	if err != nil {
		return err
	}
	if len(dst) < n {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrBufferTooSmall, len(dst), n)
	}
	grid, nx, ny, err := decodeGrid(hash, punch)
	if err != nil {
		return err
	}
	render(grid, nx, ny, width, height, channels, dst)
	return nil
}

// DecodeImage renders hash into an opaque NRGBA image.
func DecodeImage(hash string, width, height int, punch float64) (*image.NRGBA, error) {
	if _, err := bufferLen(width, height, 4); err != nil {
		return nil, err
	}
	grid, nx, ny, err := decodeGrid(hash, punch)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	render(grid, nx, ny, width, height, 4, img.Pix)
	return img, nil
}

func bufferLen(width, height, channels int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	if channels != 3 && channels != 4 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidChannels, channels)
	}
	if width > MaxDecodePixels/height {
		return 0, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrAllocationFailure, width, height, MaxDecodePixels)
	}
	return width * height * channels, nil
}

// decodeGrid parses every digit group of hash into linear RGB triples.
// Nothing is rendered until the whole hash has parsed.
func decodeGrid(hash string, punch float64) ([]float64, int, int, error) {
	nx, ny, err := Components(hash)
	if err != nil {
		return nil, 0, 0, err
	}
	if !(punch >= 1) { // also catches NaN
		punch = 1
	}

	q, err := decodeBase83(hash, 1, 2)
	if err != nil {
		return nil, 0, 0, err
	}
	maxValue := float64(q+1) / 166 * punch

	dc, err := decodeDCValue(hash)
	if err != nil {
		return nil, 0, 0, err
	}

	grid := make([]float64, nx*ny*3)
	grid[0] = sRGBToLinear(uint8(dc >> 16))
	grid[1] = sRGBToLinear(uint8(dc >> 8))
	grid[2] = sRGBToLinear(uint8(dc))

	for i := 1; i < nx*ny; i++ {
		start := 4 + i*2
		v, err := decodeBase83(hash, start, start+2)
		if err != nil {
			return nil, 0, 0, err
		}
		if v >= 19*19*19 {
			return nil, 0, 0, fmt.Errorf("%w: AC value %d at offset %d out of range", ErrMalformedHash, v, start)
		}
		grid[i*3] = decodeACLevel(v/(19*19), maxValue)
		grid[i*3+1] = decodeACLevel((v/19)%19, maxValue)
		grid[i*3+2] = decodeACLevel(v%19, maxValue)
	}
	return grid, nx, ny, nil
}

func decodeDCValue(hash string) (int, error) {
	dc, err := decodeBase83(hash, 2, 6)
	if err != nil {
		return 0, err
	}
	if dc > 0xffffff {
		return 0, fmt.Errorf("%w: DC value %#x exceeds 24 bits", ErrMalformedHash, dc)
	}
	return dc, nil
}

func decodeACLevel(level int, maxValue float64) float64 {
	return signPow(float64(level-9)/9, 2) * maxValue
}

// render sums the cosine basis for every output pixel.  Resolution is free:
// the basis is evaluated at width×height regardless of the encoded size.
func render(grid []float64, nx, ny, width, height, channels int, dst []byte) {
	cosX := cosTable(nx, width)
	cosY := cosTable(ny, height)
	rowLen := width * channels

	for y := 0; y < height; y++ {
		row := dst[y*rowLen : (y+1)*rowLen]
		for x := 0; x < width; x++ {
			var r, g, b float64
			for j := 0; j < ny; j++ {
				fy := cosY[j*height+y]
				for i := 0; i < nx; i++ {
					basis := fy * cosX[i*width+x]
					k := (j*nx + i) * 3
					r += grid[k] * basis
					g += grid[k+1] * basis
					b += grid[k+2] * basis
				}
			}
			off := x * channels
			row[off] = uint8(linearToSRGB(r))
			row[off+1] = uint8(linearToSRGB(g))
			row[off+2] = uint8(linearToSRGB(b))
			if channels == 4 {
				row[off+3] = 255
			}
		}
	}
}
