package common

const lookaheadBits = 9

// HuffmanTable represents a Huffman decoding table
type HuffmanTable struct {
	// Number of codes of each length (1-16 bits)
	Bits [16]int
	// Values for each code, in order of code length
	Values []byte

	// Indexed by code length 1..16
	maxCode [17]int32
	valPtr  [17]int32

	// Codes of up to lookaheadBits bits: (length << 8) | value, 0 when absent
	lookup [1 << lookaheadBits]uint16
}

// NewHuffmanTable builds a decoding table from a DHT definition. Bogus
// definitions (too many values, over-subscribed code space) are rejected.
func NewHuffmanTable(bits [16]int, values []byte) (*HuffmanTable, error) {
	h := &HuffmanTable{Bits: bits}
	total := 0
	for _, n := range bits {
		if n < 0 {
			return nil, Errorf(CodeBadHuffTable)
		}
		total += n
	}
	if total > 256 || total > len(values) {
		return nil, Errorf(CodeBadHuffTable)
	}
	h.Values = append([]byte(nil), values[:total]...)

	code := int32(0)
	k := int32(0)
	for l := 1; l <= 16; l++ {
		n := int32(bits[l-1])
		remaining := k < int32(total)
		if n == 0 {
			h.maxCode[l] = -1
		} else {
			h.valPtr[l] = k - code
			for i := int32(0); i < n; i++ {
				if code >= 1<<uint(l) {
					return nil, Errorf(CodeBadHuffTable)
				}
				if l <= lookaheadBits {
					shift := uint(lookaheadBits - l)
					base := code << shift
					entry := uint16(l<<8) | uint16(h.Values[k])
					for j := int32(0); j < 1<<shift; j++ {
						h.lookup[base+j] = entry
					}
				}
				code++
				k++
			}
			h.maxCode[l] = code - 1
		}
		// The all-ones code of every length is reserved
		if remaining && code >= 1<<uint(l) {
			return nil, Errorf(CodeBadHuffTable)
		}
		code <<= 1
	}
	return h, nil
}

// HuffmanDecoder reads entropy-coded bits from an in-memory scan. 0xFF00
// stuffing is removed; when a marker or the end of data is reached, zero
// bits are supplied so the caller can finish the current block.
type HuffmanDecoder struct {
	data   []byte
	pos    int
	acc    uint64
	nBits  int
	marker uint16
	padded int
}

// NewHuffmanDecoder creates a decoder reading data from offset pos.
func NewHuffmanDecoder(data []byte, pos int) *HuffmanDecoder {
	return &HuffmanDecoder{data: data, pos: pos}
}

// Pos returns the offset of the first byte not consumed. After the scan
// stopped at a marker, this is the marker's 0xFF prefix.
func (d *HuffmanDecoder) Pos() int {
	return d.pos
}

// Marker returns the marker that terminated entropy data, or 0.
func (d *HuffmanDecoder) Marker() uint16 {
	return d.marker
}

// Padded reports how many zero bytes were synthesized past the end of the
// entropy-coded data.
func (d *HuffmanDecoder) Padded() int {
	return d.padded
}

func (d *HuffmanDecoder) fill() {
	for d.nBits <= 56 {
		var b byte
		switch {
		case d.marker != 0 || d.pos >= len(d.data):
			d.padded++
		case d.data[d.pos] != 0xFF:
			b = d.data[d.pos]
			d.pos++
		default:
			// Skip fill bytes, then decide between stuffing and a marker
			next := d.pos + 1
			for next < len(d.data) && d.data[next] == 0xFF {
				next++
			}
			if next >= len(d.data) {
				d.pos = len(d.data)
				d.padded++
				break
			}
			if d.data[next] == 0x00 {
				b = 0xFF
				d.pos = next + 1
				break
			}
			d.pos = next - 1
			d.marker = 0xFF00 | uint16(d.data[next])
			d.padded++
		}
		d.acc = d.acc<<8 | uint64(b)
		d.nBits += 8
	}
}

// ReadBits reads n bits (0-16), most significant first.
func (d *HuffmanDecoder) ReadBits(n int) uint32 {
	if n == 0 {
		return 0
	}
	if d.nBits < n {
		d.fill()
	}
	d.nBits -= n
	return uint32(d.acc>>uint(d.nBits)) & (1<<uint(n) - 1)
}

// ReadBit reads a single bit.
func (d *HuffmanDecoder) ReadBit() bool {
	return d.ReadBits(1) != 0
}

// Decode decodes one symbol using table.
func (d *HuffmanDecoder) Decode(table *HuffmanTable) (byte, error) {
	if d.nBits < 16 {
		d.fill()
	}
	peek := uint32(d.acc>>uint(d.nBits-lookaheadBits)) & (1<<lookaheadBits - 1)
	if e := table.lookup[peek]; e != 0 {
		d.nBits -= int(e >> 8)
		return byte(e), nil
	}
	for l := lookaheadBits + 1; l <= 16; l++ {
		code := int32(uint32(d.acc>>uint(d.nBits-l)) & (1<<uint(l) - 1))
		if code <= table.maxCode[l] {
			d.nBits -= l
			return table.Values[table.valPtr[l]+code], nil
		}
	}
	return 0, Errorf(CodeHuffMissingCode)
}

// ReceiveExtend reads an ssss-bit magnitude and sign-extends it (F.2.2.1).
func (d *HuffmanDecoder) ReceiveExtend(ssss int) int32 {
	if ssss == 0 {
		return 0
	}
	v := int32(d.ReadBits(ssss))
	if v < 1<<uint(ssss-1) {
		v += -1<<uint(ssss) + 1
	}
	return v
}

// Restart discards buffered bits and consumes the restart marker expected at
// the end of a restart interval. It reports whether a RSTn marker was found;
// when it was not, decoding continues on zero bits.
func (d *HuffmanDecoder) Restart() bool {
	d.acc = 0
	d.nBits = 0
	if d.marker == 0 {
		// Look for the marker, dropping any garbage before it
		for d.pos+1 < len(d.data) {
			if d.data[d.pos] == 0xFF && d.data[d.pos+1] != 0x00 && d.data[d.pos+1] != 0xFF {
				d.marker = 0xFF00 | uint16(d.data[d.pos+1])
				break
			}
			d.pos++
		}
	}
	if !IsRST(d.marker) {
		return false
	}
	d.pos += 2
	d.marker = 0
	d.padded = 0
	return true
}
