package common

import "math"

// cosTable[u][x] = C(u)/2 * cos((2x+1)u*pi/16), the 1D DCT-II basis with
// the JPEG normalisation folded in. Applying it along rows and then columns
// yields coefficients on the scale quantization tables expect.
var cosTable [8][8]float32

func init() {
	for u := 0; u < 8; u++ {
		cu := 1.0
		if u == 0 {
			cu = 1 / math.Sqrt2
		}
		for x := 0; x < 8; x++ {
			cosTable[u][x] = float32(cu / 2 * math.Cos(float64(2*x+1)*float64(u)*math.Pi/16))
		}
	}
}

// FDCT performs the forward Discrete Cosine Transform on an 8x8 block.
// Input: 64 samples in natural order, range 0-255 (level shift is applied here)
// Output: 64 coefficients in natural order
func FDCT(block *[64]float32, coef *[64]float32) {
	var tmp [64]float32

	// Rows
	for y := 0; y < 8; y++ {
		row := block[y*8 : y*8+8]
		for u := 0; u < 8; u++ {
			var s float32
			for x := 0; x < 8; x++ {
				s += (row[x] - 128) * cosTable[u][x]
			}
			tmp[y*8+u] = s
		}
	}

	// Columns
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			var s float32
			for y := 0; y < 8; y++ {
				s += tmp[y*8+u] * cosTable[v][y]
			}
			coef[v*8+u] = s
		}
	}
}

// Quantize divides coef by the quantization table and rounds half away from
// zero. The result is in zig-zag order, ready for entropy coding.
func Quantize(coef *[64]float32, qt *[64]int32, out *[64]int32) {
	for k := 0; k < 64; k++ {
		n := Unzig[k]
		v := coef[n] / float32(qt[n])
		if v < 0 {
			out[k] = -int32(-v + 0.5)
		} else {
			out[k] = int32(v + 0.5)
		}
	}
}
