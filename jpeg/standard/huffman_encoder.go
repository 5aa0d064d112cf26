package standard

import (
	"io"

	"github.com/cocosip/go-jpegasm/jpeg/common"
)

// HuffmanEncoder packs entropy-coded bits, inserting a 0x00 after every
// 0xFF data byte.
type HuffmanEncoder struct {
	w     io.ByteWriter
	bits  uint64 // Bit buffer
	nBits int    // Number of bits in buffer
	err   error
}

// NewHuffmanEncoder creates a new Huffman encoder
func NewHuffmanEncoder(w io.ByteWriter) *HuffmanEncoder {
	return &HuffmanEncoder{w: w}
}

// Err returns the first write error
func (e *HuffmanEncoder) Err() error {
	return e.err
}

// WriteBits writes the low n bits of bits (n <= 32)
func (e *HuffmanEncoder) WriteBits(bits uint32, n int) {
	if n == 0 {
		return
	}
	e.bits = e.bits<<uint(n) | uint64(bits&(1<<uint(n)-1))
	e.nBits += n
	for e.nBits >= 8 {
		e.writeByte(byte(e.bits >> uint(e.nBits-8)))
		e.nBits -= 8
	}
}

// Emit writes a Huffman code
func (e *HuffmanEncoder) Emit(code HuffmanCode) {
	e.WriteBits(uint32(code.Code), code.Len)
}

// writeByte writes a byte with byte stuffing
func (e *HuffmanEncoder) writeByte(b byte) {
	if e.err != nil {
		return
	}
	if e.err = e.w.WriteByte(b); e.err != nil {
		return
	}
	if b == 0xFF {
		e.err = e.w.WriteByte(0x00)
	}
}

// Flush pads the last partial byte with 1s
func (e *HuffmanEncoder) Flush() {
	if e.nBits > 0 {
		pad := 8 - e.nBits
		e.WriteBits(1<<uint(pad)-1, pad)
	}
	e.bits = 0
	e.nBits = 0
}

// Restart flushes and writes marker RSTn (n taken modulo 8)
func (e *HuffmanEncoder) Restart(n int) {
	e.Flush()
	if e.err != nil {
		return
	}
	if e.err = e.w.WriteByte(0xFF); e.err != nil {
		return
	}
	e.err = e.w.WriteByte(byte(common.MarkerRST0&0xFF) + byte(n&7))
}

// HuffmanCode represents a Huffman code
type HuffmanCode struct {
	Code uint16 // The Huffman code
	Len  int    // Code length in bits, 0 when the symbol has no code
}

// BuildHuffmanCodes assigns canonical codes to the symbols of spec,
// indexed by symbol value.
func BuildHuffmanCodes(spec common.HuffmanSpec) [256]HuffmanCode {
	var codes [256]HuffmanCode
	code := uint16(0)
	p := 0
	for l := 0; l < 16; l++ {
		for i := 0; i < spec.Bits[l] && p < len(spec.Values); i++ {
			codes[spec.Values[p]] = HuffmanCode{Code: code, Len: l + 1}
			code++
			p++
		}
		code <<= 1
	}
	return codes
}

// Category returns the magnitude category of v and the bits that encode it
// (F.1.2.1). Negative values are sent as v-1 in category bits.
func Category(v int32) (cat int, bits uint32) {
	if v == 0 {
		return 0, 0
	}
	a := v
	if a < 0 {
		a = -a
	}
	for a>>uint(cat) != 0 {
		cat++
	}
	if v < 0 {
		v--
	}
	return cat, uint32(v) & (1<<uint(cat) - 1)
}

// OptimalSpec builds a Huffman table for the symbol frequencies in freq
// (ITU T.81 Annex K.2): code lengths are limited to 16 bits and the
// all-ones code is never assigned. Symbols with zero frequency get no code.
func OptimalSpec(freq [256]int64) common.HuffmanSpec {
	var f [257]int64
	used := false
	for i, n := range freq {
		if n < 0 {
			n = 0
		}
		f[i] = n
		used = used || n > 0
	}
	if !used {
		f[0] = 1
	}
	f[256] = 1 // reserved so no real symbol gets the all-ones code

	var codeSize [257]int
	var others [257]int
	for i := range others {
		others[i] = -1
	}

	for {
		// Least frequent symbol, ties to the larger value
		c1 := -1
		var v int64 = 1 << 62
		for i := 0; i <= 256; i++ {
			if f[i] != 0 && f[i] <= v {
				v = f[i]
				c1 = i
			}
		}
		// Next least frequent
		c2 := -1
		v = 1 << 62
		for i := 0; i <= 256; i++ {
			if f[i] != 0 && f[i] <= v && i != c1 {
				v = f[i]
				c2 = i
			}
		}
		if c2 < 0 {
			break
		}

		f[c1] += f[c2]
		f[c2] = 0

		codeSize[c1]++
		for others[c1] >= 0 {
			c1 = others[c1]
			codeSize[c1]++
		}
		others[c1] = c2

		codeSize[c2]++
		for others[c2] >= 0 {
			c2 = others[c2]
			codeSize[c2]++
		}
	}

	// Count codes per length; the longest possible chain is 256 symbols
	var bits [258]int
	for i := 0; i <= 256; i++ {
		if codeSize[i] > 0 {
			bits[codeSize[i]]++
		}
	}

	// Limit lengths to 16 bits (K.3)
	for i := len(bits) - 1; i > 16; i-- {
		for bits[i] > 0 {
			j := i - 2
			for bits[j] == 0 {
				j--
			}
			bits[i] -= 2
			bits[i-1]++
			bits[j+1] += 2
			bits[j]--
		}
	}

	// Drop the reserved symbol, which holds the longest code
	i := 16
	for bits[i] == 0 {
		i--
	}
	bits[i]--

	var spec common.HuffmanSpec
	for l := 1; l <= 16; l++ {
		spec.Bits[l-1] = bits[l]
	}
	for l := 1; l < len(bits); l++ {
		for s := 0; s < 256; s++ {
			if codeSize[s] == l {
				spec.Values = append(spec.Values, byte(s))
			}
		}
	}
	return spec
}
