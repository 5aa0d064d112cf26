package common

import (
	"testing"
)

func TestFDCTFlatBlock(t *testing.T) {
	var block, coef [64]float32
	for i := range block {
		block[i] = 200
	}
	FDCT(&block, &coef)

	if d := coef[0] - 8*(200-128); d > 0.01 || d < -0.01 {
		t.Errorf("DC = %f, want %d", coef[0], 8*(200-128))
	}
	for i := 1; i < 64; i++ {
		if coef[i] > 0.01 || coef[i] < -0.01 {
			t.Errorf("AC[%d] = %f, want 0", i, coef[i])
		}
	}
}

func TestDCTRoundTrip(t *testing.T) {
	var block, coef [64]float32
	for i := range block {
		block[i] = float32((i*37 + (i/8)*11) % 256)
	}
	FDCT(&block, &coef)

	var ones [64]int32
	for i := range ones {
		ones[i] = 1
	}
	var zz [64]int32
	Quantize(&coef, &ones, &zz)

	// Back to natural order
	var natural [64]int32
	for k := 0; k < 64; k++ {
		natural[Unzig[k]] = zz[k]
	}

	out := make([]byte, 64)
	IDCT(&natural, out, 8)

	for i := range block {
		d := int(block[i]) - int(out[i])
		if d < -2 || d > 2 {
			t.Errorf("sample %d: got %d, want %v", i, out[i], block[i])
		}
	}
}

func TestQuantizeRounding(t *testing.T) {
	var coef [64]float32
	var qt [64]int32
	for i := range qt {
		qt[i] = 10
	}
	coef[0] = 15   // 1.5 rounds away from zero
	coef[1] = -15  // -1.5
	coef[8] = 14.9 // 1.49
	var out [64]int32
	Quantize(&coef, &qt, &out)

	// Natural index 1 is zig-zag 1, natural 8 is zig-zag 2
	if out[0] != 2 || out[1] != -2 || out[2] != 1 {
		t.Errorf("got %d %d %d, want 2 -2 1", out[0], out[1], out[2])
	}
}

func TestIDCTStride(t *testing.T) {
	var coef [64]int32
	coef[0] = 8 * 50 // flat 178
	out := make([]byte, 16*8)
	IDCT(&coef, out, 16)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			want := byte(178)
			if x >= 8 {
				want = 0
			}
			if out[y*16+x] != want {
				t.Fatalf("(%d,%d) = %d, want %d", x, y, out[y*16+x], want)
			}
		}
	}
}
