package common

// IDCT performs the inverse Discrete Cosine Transform on an 8x8 block.
// Input: 64 dequantized coefficients in natural order
// Output: 8 rows of 8 samples written to out with the given stride,
// level shifted and clamped to 0-255
func IDCT(coef *[64]int32, out []byte, stride int) {
	// DC only blocks are flat
	ac := false
	for i := 1; i < 64; i++ {
		if coef[i] != 0 {
			ac = true
			break
		}
	}
	if !ac {
		v := byte(clampSample(float32(coef[0])/8 + 128))
		for y := 0; y < 8; y++ {
			row := out[y*stride : y*stride+8]
			for x := range row {
				row[x] = v
			}
		}
		return
	}

	var tmp [64]float32

	// Columns: tmp[y][u] = sum_v C(v)/2 cos(...) F[v][u]
	for u := 0; u < 8; u++ {
		for y := 0; y < 8; y++ {
			var s float32
			for v := 0; v < 8; v++ {
				if c := coef[v*8+u]; c != 0 {
					s += float32(c) * cosTable[v][y]
				}
			}
			tmp[y*8+u] = s
		}
	}

	// Rows
	for y := 0; y < 8; y++ {
		row := tmp[y*8 : y*8+8]
		dst := out[y*stride : y*stride+8]
		for x := 0; x < 8; x++ {
			var s float32
			for u := 0; u < 8; u++ {
				s += row[u] * cosTable[u][x]
			}
			dst[x] = byte(clampSample(s + 128))
		}
	}
}

func clampSample(v float32) int {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return int(v + 0.5)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DivCeil returns ceil(a / b) for positive b.
func DivCeil(a, b int) int {
	return (a + b - 1) / b
}
