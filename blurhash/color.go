package blurhash

import "math"

// sRGBToLinearTable holds the EOTF for every 8-bit value.  Filled once at
// init and only read afterwards.
var sRGBToLinearTable [256]float64

func init() {
	for i := range sRGBToLinearTable {
		v := float64(i) / 255
		if v <= 0.04045 {
			sRGBToLinearTable[i] = v / 12.92
		} else {
			sRGBToLinearTable[i] = math.Pow((v+0.055)/1.055, 2.4)
		}
	}
}

// sRGBToLinear converts an 8-bit sRGB channel to linear light in [0, 1].
func sRGBToLinear(v uint8) float64 {
	return sRGBToLinearTable[v]
}

// linearToSRGB converts linear light to an 8-bit sRGB value.  Input outside
// [0, 1] is clamped first, so the result is always in [0, 255].
func linearToSRGB(v float64) int {
	v = clampF(v, 0, 1)
	if v <= 0.0031308 {
		return int(v*12.92*255 + 0.5)
	}
	return int((1.055*math.Pow(v, 1/2.4)-0.055)*255 + 0.5)
}

// signPow raises |v| to exp and restores the sign of v.
func signPow(v, exp float64) float64 {
	return math.Copysign(math.Pow(math.Abs(v), exp), v)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
