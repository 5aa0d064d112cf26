package baseline

import (
	"encoding/binary"

	"github.com/cocosip/go-jpegasm/jpeg/common"
	"github.com/cocosip/go-jpegasm/jpeg/standard"
)

// maxComponents is the frame component limit libjpeg enforces
const maxComponents = 10

// maxDecodeBytes bounds the planes and output allocated for one image
const maxDecodeBytes = 1 << 30

// Component represents a color component in the image
type Component struct {
	ID byte // Component identifier
	H  int  // Horizontal sampling factor
	V  int  // Vertical sampling factor
	Tq int  // Quantization table selector

	bw, bh int    // blocks per row/column in the MCU-padded plane
	stride int    // plane row length in samples
	td, ta int    // Huffman table selectors of the current scan
	pred   int32  // DC prediction value
	seen   bool   // appeared in at least one scan
	data   []byte // decoded samples
}

// Decoder represents a JPEG Baseline decoder. A Decoder holds the state of
// a single stream and must not be shared between goroutines.
type Decoder struct {
	reader *standard.Reader

	width      int                     // Image width
	height     int                     // Image height
	precision  int                     // Sample precision (bits)
	sof        uint16                  // Frame marker
	components []*Component            // Color components
	hmax, vmax int                     // Largest sampling factors
	mcusX      int                     // MCUs per row
	mcusY      int                     // MCU rows
	qtables    [4]*[64]int32           // Quantization tables, natural order
	dcTables   [4]*common.HuffmanTable // DC Huffman tables
	acTables   [4]*common.HuffmanTable // AC Huffman tables
	restartInt int                     // Restart interval

	jfif           bool
	adobe          bool
	adobeTransform int
	scans          int
}

// Decode decodes JPEG Baseline data.
// Returns interleaved samples with 1 (grayscale) or 3 (RGB) components.
func Decode(jpegData []byte) (pixelData []byte, width, height, components int, err error) {
	d := &Decoder{}
	if err := d.decode(jpegData, false); err != nil {
		return nil, 0, 0, 0, err
	}
	pixelData, components, err = d.convertToPixels(false)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return pixelData, d.width, d.height, components, nil
}

// DecodeRGB decodes JPEG Baseline data to interleaved RGB, expanding
// grayscale images to three equal channels.
func DecodeRGB(jpegData []byte) (pixelData []byte, width, height int, err error) {
	d := &Decoder{}
	if err := d.decode(jpegData, false); err != nil {
		return nil, 0, 0, err
	}
	pixelData, _, err = d.convertToPixels(true)
	if err != nil {
		return nil, 0, 0, err
	}
	return pixelData, d.width, d.height, nil
}

// readSOI checks the stream signature the way libjpeg does: a one-byte
// stream reports 0xFF as its second byte, the fake EOI libjpeg supplies at
// end of input.
func readSOI(data []byte) error {
	if len(data) == 0 {
		return common.Errorf(common.CodeInputEmpty)
	}
	b0, b1 := data[0], byte(0xFF)
	if len(data) > 1 {
		b1 = data[1]
	}
	if b0 != 0xFF || b1 != byte(common.MarkerSOI&0xFF) {
		return common.Errorf(common.CodeNoSOI, b0, b1)
	}
	return nil
}

// decode walks the marker structure. With headerOnly set it stops at the
// first scan header and accepts any SOF process.
func (d *Decoder) decode(data []byte, headerOnly bool) error {
	if err := readSOI(data); err != nil {
		return err
	}
	d.reader = standard.NewReader(data)
	d.reader.Seek(2)

	for {
		marker, _, err := d.reader.ReadMarker()
		if err != nil {
			// Running out of data between segments acts as EOI
			marker = common.MarkerEOI
		}

		switch {
		case marker == common.MarkerEOI:
			if d.scans > 0 || (headerOnly && d.sof != 0) {
				return nil
			}
			if d.sof != 0 {
				return common.Errorf(common.CodeSOFNoSOS)
			}
			return common.Errorf(common.CodeNoImage)

		case marker == common.MarkerSOI:
			return common.Errorf(common.CodeSOIDuplicate)

		case common.IsSOF(marker):
			if d.sof != 0 {
				return common.Errorf(common.CodeSOFDuplicate)
			}
			if !headerOnly && !common.IsSequentialHuffman(marker) {
				return common.Errorf(common.CodeSOFUnsupported, int(marker&0xFF))
			}
			if err := d.parseSOF(marker, headerOnly); err != nil {
				return err
			}

		case marker == common.MarkerDQT:
			if err := d.parseDQT(); err != nil {
				return err
			}

		case marker == common.MarkerDHT:
			if err := d.parseDHT(); err != nil {
				return err
			}

		case marker == common.MarkerDRI:
			if err := d.parseDRI(); err != nil {
				return err
			}

		case marker == common.MarkerSOS:
			if d.sof == 0 {
				return common.Errorf(common.CodeSOSNoSOF)
			}
			if headerOnly {
				return nil
			}
			if err := d.parseSOS(); err != nil {
				return err
			}

		case marker == common.MarkerAPP0 || marker == common.MarkerAPP14:
			seg, err := d.reader.ReadSegment()
			if err != nil {
				return err
			}
			d.parseAPP(marker, seg)

		case common.IsRST(marker), marker == common.MarkerTEM:
			// Stray parameterless markers are ignored

		default:
			// APPn, COM, DNL, DAC and reserved markers are skipped
			if _, err := d.reader.ReadSegment(); err != nil {
				return err
			}
		}
	}
}

// parseAPP records JFIF and Adobe colour transform information
func (d *Decoder) parseAPP(marker uint16, seg []byte) {
	switch marker {
	case common.MarkerAPP0:
		if len(seg) >= 5 && string(seg[:5]) == "JFIF\x00" {
			d.jfif = true
		}
	case common.MarkerAPP14:
		if len(seg) >= 12 && string(seg[:5]) == "Adobe" {
			d.adobe = true
			d.adobeTransform = int(seg[11])
		}
	}
}

// parseSOF parses Start of Frame marker
func (d *Decoder) parseSOF(marker uint16, headerOnly bool) error {
	seg, err := d.reader.ReadSegment()
	if err != nil {
		return err
	}
	if len(seg) < 6 {
		return common.Errorf(common.CodeBadLength)
	}

	d.sof = marker
	d.precision = int(seg[0])
	d.height = int(binary.BigEndian.Uint16(seg[1:]))
	d.width = int(binary.BigEndian.Uint16(seg[3:]))
	nf := int(seg[5])

	if d.width == 0 || d.height == 0 || nf == 0 {
		return common.Errorf(common.CodeEmptyImage)
	}
	if len(seg) != 6+nf*3 {
		return common.Errorf(common.CodeBadLength)
	}
	if !headerOnly && d.precision != 8 {
		return common.Errorf(common.CodeBadPrecision, d.precision)
	}
	if d.width > MaxDimension || d.height > MaxDimension {
		return common.Errorf(common.CodeImageTooBig, MaxDimension)
	}
	if nf > maxComponents {
		return common.Errorf(common.CodeComponentCount, nf, maxComponents)
	}

	d.components = make([]*Component, nf)
	d.hmax, d.vmax = 1, 1
	for i := 0; i < nf; i++ {
		p := seg[6+i*3:]
		c := &Component{
			ID: p[0],
			H:  int(p[1] >> 4),
			V:  int(p[1] & 0x0F),
			Tq: int(p[2]),
		}
		if c.H < 1 || c.H > 4 || c.V < 1 || c.V > 4 {
			return common.Errorf(common.CodeBadSampling)
		}
		d.hmax = max(d.hmax, c.H)
		d.vmax = max(d.vmax, c.V)
		d.components[i] = c
	}
	if headerOnly {
		return nil
	}

	if nf != 1 && nf != 3 {
		return common.Errorf(common.CodeConversionNotImpl)
	}

	d.mcusX = common.DivCeil(d.width, 8*d.hmax)
	d.mcusY = common.DivCeil(d.height, 8*d.vmax)
	total := int64(d.width) * int64(d.height) * 3
	for _, c := range d.components {
		if d.hmax%c.H != 0 || d.vmax%c.V != 0 {
			return common.Errorf(common.CodeBadSampling)
		}
		c.bw = d.mcusX * c.H
		c.bh = d.mcusY * c.V
		c.stride = c.bw * 8
		total += int64(c.stride) * int64(c.bh*8)
	}
	if total > maxDecodeBytes {
		return common.Errorf(common.CodeOutOfMemory, 1)
	}
	for _, c := range d.components {
		c.data = make([]byte, c.stride*c.bh*8)
	}
	return nil
}

// parseDQT parses Define Quantization Table marker
func (d *Decoder) parseDQT() error {
	seg, err := d.reader.ReadSegment()
	if err != nil {
		return err
	}
	for len(seg) > 0 {
		pq, tq := int(seg[0]>>4), int(seg[0]&0x0F)
		if tq > 3 {
			return common.Errorf(common.CodeDQTIndex, tq)
		}
		seg = seg[1:]

		size := 64
		if pq != 0 {
			size = 128 // 16-bit entries
		}
		if len(seg) < size {
			return common.Errorf(common.CodeBadLength)
		}

		table := new([64]int32)
		for k := 0; k < 64; k++ {
			var v int32
			if pq != 0 {
				v = int32(binary.BigEndian.Uint16(seg[k*2:]))
			} else {
				v = int32(seg[k])
			}
			table[common.Unzig[k]] = v
		}
		d.qtables[tq] = table
		seg = seg[size:]
	}
	return nil
}

// parseDHT parses Define Huffman Table marker
func (d *Decoder) parseDHT() error {
	seg, err := d.reader.ReadSegment()
	if err != nil {
		return err
	}
	for len(seg) > 0 {
		if len(seg) < 17 {
			return common.Errorf(common.CodeBadLength)
		}
		index := int(seg[0])
		ac := index&0x10 != 0
		if ac {
			index -= 0x10
		}
		if index < 0 || index > 3 {
			return common.Errorf(common.CodeDHTIndex, index)
		}

		var bits [16]int
		count := 0
		for i := 0; i < 16; i++ {
			bits[i] = int(seg[1+i])
			count += bits[i]
		}
		seg = seg[17:]
		if count > 256 || count > len(seg) {
			return common.Errorf(common.CodeBadHuffTable)
		}
		values := seg[:count]
		if !ac {
			for _, v := range values {
				if v > 15 {
					return common.Errorf(common.CodeBadHuffTable)
				}
			}
		}

		table, err := common.NewHuffmanTable(bits, values)
		if err != nil {
			return err
		}
		if ac {
			d.acTables[index] = table
		} else {
			d.dcTables[index] = table
		}
		seg = seg[count:]
	}
	return nil
}

// parseDRI parses Define Restart Interval marker
func (d *Decoder) parseDRI() error {
	seg, err := d.reader.ReadSegment()
	if err != nil {
		return err
	}
	if len(seg) != 2 {
		return common.Errorf(common.CodeBadLength)
	}
	d.restartInt = int(binary.BigEndian.Uint16(seg))
	return nil
}

// parseSOS parses Start of Scan marker and decodes the scan that follows
func (d *Decoder) parseSOS() error {
	seg, err := d.reader.ReadSegment()
	if err != nil {
		return err
	}
	if len(seg) < 1 {
		return common.Errorf(common.CodeBadLength)
	}
	ns := int(seg[0])
	if len(seg) != 4+ns*2 || ns < 1 || ns > 4 {
		return common.Errorf(common.CodeBadLength)
	}

	scan := make([]*Component, 0, ns)
	blocks := 0
	for i := 0; i < ns; i++ {
		id := seg[1+i*2]
		sel := seg[2+i*2]
		var comp *Component
		for _, c := range d.components {
			if c.ID == id {
				comp = c
				break
			}
		}
		if comp == nil {
			return common.Errorf(common.CodeBadComponentID, int(id))
		}
		comp.td, comp.ta = int(sel>>4), int(sel&0x0F)
		if comp.td > 3 || d.dcTables[comp.td] == nil {
			return common.Errorf(common.CodeNoHuffTable, comp.td)
		}
		if comp.ta > 3 || d.acTables[comp.ta] == nil {
			return common.Errorf(common.CodeNoHuffTable, comp.ta)
		}
		if comp.Tq > 3 || d.qtables[comp.Tq] == nil {
			return common.Errorf(common.CodeNoQuantTable, comp.Tq)
		}
		blocks += comp.H * comp.V
		scan = append(scan, comp)
	}
	if ns > 1 && blocks > 10 {
		return common.Errorf(common.CodeBadSampling)
	}
	// Ss, Se and Ah/Al are fixed for sequential scans and are not checked

	if err := d.decodeScan(scan); err != nil {
		return err
	}
	d.scans++
	return nil
}

// decodeScan decodes the entropy-coded segment of one scan
func (d *Decoder) decodeScan(scan []*Component) error {
	hd := common.NewHuffmanDecoder(d.reader.Data(), d.reader.Pos())
	for _, c := range scan {
		c.pred = 0
		c.seen = true
	}

	mcusX, mcusY := d.mcusX, d.mcusY
	if len(scan) == 1 {
		// Non-interleaved: one block per MCU over the component's own extent
		c := scan[0]
		mcusX = common.DivCeil(common.DivCeil(d.width*c.H, d.hmax), 8)
		mcusY = common.DivCeil(common.DivCeil(d.height*c.V, d.vmax), 8)
	}

	mcu := 0
	for my := 0; my < mcusY; my++ {
		for mx := 0; mx < mcusX; mx++ {
			if d.restartInt > 0 && mcu > 0 && mcu%d.restartInt == 0 {
				hd.Restart()
				for _, c := range scan {
					c.pred = 0
				}
			}
			if len(scan) == 1 {
				if err := d.decodeBlock(hd, scan[0], mx, my); err != nil {
					return err
				}
			} else {
				for _, c := range scan {
					for v := 0; v < c.V; v++ {
						for h := 0; h < c.H; h++ {
							if err := d.decodeBlock(hd, c, mx*c.H+h, my*c.V+v); err != nil {
								return err
							}
						}
					}
				}
			}
			mcu++
		}
	}

	// Resume marker parsing where entropy data stopped
	d.reader.Seek(hd.Pos())
	return nil
}

// decodeBlock decodes a single 8x8 block into the component plane
func (d *Decoder) decodeBlock(hd *common.HuffmanDecoder, c *Component, bx, by int) error {
	qt := d.qtables[c.Tq]
	var blk [64]int32

	s, err := hd.Decode(d.dcTables[c.td])
	if err != nil {
		return err
	}
	c.pred += hd.ReceiveExtend(int(s))
	blk[0] = c.pred * qt[0]

	ac := d.acTables[c.ta]
	for k := 1; k < 64; {
		rs, err := hd.Decode(ac)
		if err != nil {
			return err
		}
		r, s := int(rs>>4), int(rs&0x0F)
		if s == 0 {
			if r != 15 {
				break // EOB
			}
			k += 16
			continue
		}
		k += r
		if k > 63 {
			return common.Errorf(common.CodeBadDCTCoef)
		}
		n := common.Unzig[k]
		blk[n] = hd.ReceiveExtend(s) * qt[n]
		k++
	}

	common.IDCT(&blk, c.data[by*8*c.stride+bx*8:], c.stride)
	return nil
}

// colorTransform reports whether a 3-component image is stored as YCbCr
func (d *Decoder) colorTransform() bool {
	if d.adobe {
		return d.adobeTransform != 0
	}
	if d.jfif {
		return true
	}
	c := d.components
	if c[0].ID == 'R' && c[1].ID == 'G' && c[2].ID == 'B' {
		return false
	}
	return true
}

// convertToPixels converts component planes to interleaved pixel data.
// Chroma planes are upsampled by sample replication.
func (d *Decoder) convertToPixels(forceRGB bool) ([]byte, int, error) {
	for _, c := range d.components {
		if !c.seen {
			// A component no scan covered decodes as mid-gray
			for i := range c.data {
				c.data[i] = 128
			}
		}
	}

	w, h := d.width, d.height
	if len(d.components) == 1 {
		c := d.components[0]
		if !forceRGB {
			out := make([]byte, w*h)
			for y := 0; y < h; y++ {
				copy(out[y*w:(y+1)*w], c.data[y*c.stride:])
			}
			return out, 1, nil
		}
		out := make([]byte, w*h*3)
		for y := 0; y < h; y++ {
			row := c.data[y*c.stride:]
			dst := out[y*w*3:]
			for x := 0; x < w; x++ {
				v := row[x]
				dst[x*3], dst[x*3+1], dst[x*3+2] = v, v, v
			}
		}
		return out, 3, nil
	}

	if len(d.components) != 3 {
		return nil, 0, common.Errorf(common.CodeConversionNotImpl)
	}

	c0, c1, c2 := d.components[0], d.components[1], d.components[2]
	ycc := d.colorTransform()
	out := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		r0 := c0.data[(y*c0.V/d.vmax)*c0.stride:]
		r1 := c1.data[(y*c1.V/d.vmax)*c1.stride:]
		r2 := c2.data[(y*c2.V/d.vmax)*c2.stride:]
		dst := out[y*w*3:]
		for x := 0; x < w; x++ {
			a := r0[x*c0.H/d.hmax]
			b := r1[x*c1.H/d.hmax]
			cc := r2[x*c2.H/d.hmax]
			if ycc {
				a, b, cc = common.YCbCrToRGB(a, b, cc)
			}
			dst[x*3], dst[x*3+1], dst[x*3+2] = a, b, cc
		}
	}
	return out, 3, nil
}
