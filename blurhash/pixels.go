package blurhash

import (
	"image"
	"image/color"
)

// packRGB copies img into a tightly packed RGB buffer (stride w*3).
// Colour is taken non-premultiplied the way color.NRGBAModel converts it,
// and a fully transparent pixel is black on every path.  Fast paths avoid
// image.At for the types image decoders usually return and must agree with
// the generic path byte for byte.
func packRGB(img image.Image) (rgb []byte, w, h int) {
	bounds := img.Bounds()
	w, h = bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, w, h
	}
	rgb = make([]byte, w*h*3)
	di := 0

	switch src := img.(type) {
	case *image.NRGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			off := src.PixOffset(bounds.Min.X, y)
			for x := 0; x < w; x++ {
				if src.Pix[off+3] != 0 {
					rgb[di], rgb[di+1], rgb[di+2] = src.Pix[off], src.Pix[off+1], src.Pix[off+2]
				}
				off += 4
				di += 3
			}
		}
	case *image.RGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			off := src.PixOffset(bounds.Min.X, y)
			for x := 0; x < w; x++ {
				rgb[di], rgb[di+1], rgb[di+2] = unpremultiply(src.Pix[off:off+4:off+4])
				off += 4
				di += 3
			}
		}
	case *image.YCbCr:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				ci := src.COffset(x, y)
				rgb[di], rgb[di+1], rgb[di+2] = color.YCbCrToRGB(src.Y[src.YOffset(x, y)], src.Cb[ci], src.Cr[ci])
				di += 3
			}
		}
	case *image.Gray:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			off := src.PixOffset(bounds.Min.X, y)
			for x := 0; x < w; x++ {
				v := src.Pix[off+x]
				rgb[di], rgb[di+1], rgb[di+2] = v, v, v
				di += 3
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				if c.A != 0 {
					rgb[di], rgb[di+1], rgb[di+2] = c.R, c.G, c.B
				}
				di += 3
			}
		}
	}
	return rgb, w, h
}

// unpremultiply converts one premultiplied RGBA pixel with the same 16-bit
// arithmetic as color.NRGBAModel.
func unpremultiply(p []byte) (r, g, b uint8) {
	a := uint32(p[3])
	switch a {
	case 0:
		return 0, 0, 0
	case 0xff:
		return p[0], p[1], p[2]
	}
	un := func(v uint8) uint8 {
		return uint8(uint32(v) * 0xffff / a >> 8)
	}
	return un(p[0]), un(p[1]), un(p[2])
}
