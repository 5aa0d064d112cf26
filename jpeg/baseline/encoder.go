package baseline

import (
	"bytes"
	"encoding/binary"

	"github.com/cocosip/go-jpegasm/jpeg/common"
	"github.com/cocosip/go-jpegasm/jpeg/standard"
)

// encComponent is one colour plane being encoded
type encComponent struct {
	id     byte
	h, v   int // sampling factors
	slot   int // quantization and Huffman table slot
	bw, bh int // blocks per row/column, padded to whole MCUs
	stride int
	plane  []byte
	coef   []int16 // quantized, zig-zag order, 64 per block
}

// Encoder represents a JPEG Baseline encoder
type Encoder struct {
	width      int
	height     int
	components int
	opts       Options

	hmax, vmax   int
	mcusX, mcusY int
	comps        []*encComponent

	qtables [2][64]int32
	specs   [2][2]common.HuffmanSpec // [class][slot]
	codes   [2][2][256]standard.HuffmanCode
}

// Encode encodes pixel data to JPEG Baseline format with default options
// components: 1 for grayscale, 3 for RGB
// quality: 1-100, where 100 is best quality; out of range values are clamped
func Encode(pixelData []byte, width, height, components, quality int) ([]byte, error) {
	opts := DefaultOptions()
	opts.Quality = quality
	return EncodeWithOptions(pixelData, width, height, components, opts)
}

// EncodeWithOptions encodes interleaved 8-bit samples (gray or RGB) to a
// JFIF stream.
func EncodeWithOptions(pixelData []byte, width, height, components int, opts Options) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, common.Errorf(common.CodeEmptyImage)
	}
	if width > MaxDimension || height > MaxDimension {
		return nil, common.Errorf(common.CodeImageTooBig, MaxDimension)
	}
	if components != 1 && components != 3 {
		return nil, common.Errorf(common.CodeConversionNotImpl)
	}
	if len(pixelData) < width*height*components {
		return nil, common.Errorf(common.CodeBufferSize)
	}
	if len(opts.Comment) > MaxCommentLength {
		return nil, common.Errorf(common.CodeBadLength)
	}

	opts.Quality = common.ClampQuality(opts.Quality)
	if opts.RestartInterval < 0 {
		opts.RestartInterval = 0
	}
	if opts.RestartInterval > 0xFFFF {
		opts.RestartInterval = 0xFFFF
	}

	enc := &Encoder{
		width:      width,
		height:     height,
		components: components,
		opts:       opts,
	}
	enc.setup()
	enc.loadPlanes(pixelData)
	enc.transform()

	if opts.OptimizeCoding {
		enc.optimizeTables()
	} else {
		enc.specs = common.StandardHuffmanSpecs
	}
	for class := 0; class < 2; class++ {
		for slot := 0; slot < 2; slot++ {
			enc.codes[class][slot] = standard.BuildHuffmanCodes(enc.specs[class][slot])
		}
	}

	var buf bytes.Buffer
	buf.Grow(width*height*components/8 + 1024)
	writer := standard.NewWriter(&buf)

	writer.WriteMarker(common.MarkerSOI)
	enc.writeAPP0(writer)
	if opts.Comment != "" {
		writer.WriteSegment(common.MarkerCOM, []byte(opts.Comment))
	}
	enc.writeDQT(writer)
	enc.writeSOF0(writer)
	enc.writeDHT(writer)
	if opts.RestartInterval > 0 {
		var ri [2]byte
		binary.BigEndian.PutUint16(ri[:], uint16(opts.RestartInterval))
		writer.WriteSegment(common.MarkerDRI, ri[:])
	}
	enc.writeSOS(writer)
	if err := writer.Err(); err != nil {
		return nil, err
	}

	huffEnc := standard.NewHuffmanEncoder(&buf)
	enc.entropyPass(nil, huffEnc)
	huffEnc.Flush()
	if err := huffEnc.Err(); err != nil {
		return nil, err
	}

	if err := writer.WriteMarker(common.MarkerEOI); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// setup derives the frame geometry and quantization tables
func (enc *Encoder) setup() {
	if enc.components == 1 {
		enc.hmax, enc.vmax = 1, 1
		enc.comps = []*encComponent{{id: 1, h: 1, v: 1, slot: 0}}
	} else {
		h, v := enc.opts.Subsampling.lumaFactors()
		enc.hmax, enc.vmax = h, v
		enc.comps = []*encComponent{
			{id: 1, h: h, v: v, slot: 0},
			{id: 2, h: 1, v: 1, slot: 1},
			{id: 3, h: 1, v: 1, slot: 1},
		}
	}
	enc.mcusX = common.DivCeil(enc.width, 8*enc.hmax)
	enc.mcusY = common.DivCeil(enc.height, 8*enc.vmax)
	for _, c := range enc.comps {
		c.bw = enc.mcusX * c.h
		c.bh = enc.mcusY * c.v
		c.stride = c.bw * 8
		c.plane = make([]byte, c.stride*c.bh*8)
		c.coef = make([]int16, c.bw*c.bh*64)
	}

	enc.qtables[0] = common.ScaleQuantTable(common.DefaultLuminanceQuantTable, enc.opts.Quality)
	enc.qtables[1] = common.ScaleQuantTable(common.DefaultChrominanceQuantTable, enc.opts.Quality)
}

// loadPlanes converts the input to component planes. Samples past the
// right and bottom edges repeat the last column and row; chroma is
// downsampled by averaging each hmax x vmax cell.
func (enc *Encoder) loadPlanes(pixelData []byte) {
	w, h := enc.width, enc.height

	if enc.components == 1 {
		c := enc.comps[0]
		for y := 0; y < c.bh*8; y++ {
			src := pixelData[min(y, h-1)*w:]
			row := c.plane[y*c.stride:]
			for x := 0; x < c.stride; x++ {
				row[x] = src[min(x, w-1)]
			}
		}
		return
	}

	yPlane := make([]byte, w*h)
	cbPlane := make([]byte, w*h)
	crPlane := make([]byte, w*h)
	for i := 0; i < w*h; i++ {
		p := pixelData[i*3 : i*3+3]
		yPlane[i], cbPlane[i], crPlane[i] = common.RGBToYCbCr(p[0], p[1], p[2])
	}

	luma := enc.comps[0]
	for y := 0; y < luma.bh*8; y++ {
		src := yPlane[min(y, h-1)*w:]
		row := luma.plane[y*luma.stride:]
		for x := 0; x < luma.stride; x++ {
			row[x] = src[min(x, w-1)]
		}
	}

	sx, sy := enc.hmax, enc.vmax
	area := sx * sy
	for i, full := range [][]byte{cbPlane, crPlane} {
		c := enc.comps[i+1]
		for y := 0; y < c.bh*8; y++ {
			row := c.plane[y*c.stride:]
			for x := 0; x < c.stride; x++ {
				sum := 0
				for dy := 0; dy < sy; dy++ {
					src := full[min(y*sy+dy, h-1)*w:]
					for dx := 0; dx < sx; dx++ {
						sum += int(src[min(x*sx+dx, w-1)])
					}
				}
				row[x] = byte((sum + area/2) / area)
			}
		}
	}
}

// transform runs the DCT and quantization over every block
func (enc *Encoder) transform() {
	var block, coef [64]float32
	var q [64]int32
	for _, c := range enc.comps {
		qt := &enc.qtables[c.slot]
		for by := 0; by < c.bh; by++ {
			for bx := 0; bx < c.bw; bx++ {
				base := by*8*c.stride + bx*8
				for y := 0; y < 8; y++ {
					row := c.plane[base+y*c.stride : base+y*c.stride+8]
					for x := 0; x < 8; x++ {
						block[y*8+x] = float32(row[x])
					}
				}
				common.FDCT(&block, &coef)
				common.Quantize(&coef, qt, &q)

				dst := c.coef[(by*c.bw+bx)*64 : (by*c.bw+bx)*64+64]
				dst[0] = int16(common.Clamp(int(q[0]), -1024, 1023))
				for k := 1; k < 64; k++ {
					dst[k] = int16(common.Clamp(int(q[k]), -1023, 1023))
				}
			}
		}
	}
}

// symbolStats counts Huffman symbols per [class][slot]
type symbolStats [2][2][256]int64

// entropyPass walks the MCUs in scan order. With stats set it only counts
// symbols; otherwise it writes the entropy-coded segment to huffEnc.
func (enc *Encoder) entropyPass(stats *symbolStats, huffEnc *standard.HuffmanEncoder) {
	preds := make([]int32, len(enc.comps))
	ri := enc.opts.RestartInterval
	mcu := 0
	for my := 0; my < enc.mcusY; my++ {
		for mx := 0; mx < enc.mcusX; mx++ {
			if ri > 0 && mcu > 0 && mcu%ri == 0 {
				if huffEnc != nil {
					huffEnc.Restart(mcu/ri - 1)
				}
				for i := range preds {
					preds[i] = 0
				}
			}
			for ci, c := range enc.comps {
				for v := 0; v < c.v; v++ {
					for h := 0; h < c.h; h++ {
						b := (my*c.v+v)*c.bw + mx*c.h + h
						enc.codeBlock(c.coef[b*64:b*64+64], &preds[ci], c.slot, stats, huffEnc)
					}
				}
			}
			mcu++
		}
	}
}

// codeBlock emits (or counts) one block of quantized coefficients
func (enc *Encoder) codeBlock(blk []int16, pred *int32, slot int, stats *symbolStats, huffEnc *standard.HuffmanEncoder) {
	emit := func(class int, sym byte, bits uint32, n int) {
		if stats != nil {
			stats[class][slot][sym]++
			return
		}
		huffEnc.Emit(enc.codes[class][slot][sym])
		huffEnc.WriteBits(bits, n)
	}

	diff := int32(blk[0]) - *pred
	*pred = int32(blk[0])
	cat, bits := standard.Category(diff)
	emit(0, byte(cat), bits, cat)

	run := 0
	for k := 1; k < 64; k++ {
		v := int32(blk[k])
		if v == 0 {
			run++
			continue
		}
		for run > 15 {
			emit(1, 0xF0, 0, 0)
			run -= 16
		}
		cat, bits := standard.Category(v)
		emit(1, byte(run<<4|cat), bits, cat)
		run = 0
	}
	if run > 0 {
		emit(1, 0x00, 0, 0)
	}
}

// optimizeTables replaces the standard Huffman tables with ones built from
// the image's own symbol statistics
func (enc *Encoder) optimizeTables() {
	var stats symbolStats
	enc.entropyPass(&stats, nil)
	slots := 1
	if enc.components == 3 {
		slots = 2
	}
	enc.specs = common.StandardHuffmanSpecs
	for class := 0; class < 2; class++ {
		for slot := 0; slot < slots; slot++ {
			enc.specs[class][slot] = standard.OptimalSpec(stats[class][slot])
		}
	}
}

// writeAPP0 writes the JFIF 1.01 header with 1:1 pixel aspect
func (enc *Encoder) writeAPP0(writer *standard.Writer) {
	writer.WriteSegment(common.MarkerAPP0, []byte{
		'J', 'F', 'I', 'F', 0,
		1, 1, // version
		0,    // density units: aspect ratio only
		0, 1, // X density
		0, 1, // Y density
		0, 0, // no thumbnail
	})
}

// writeDQT writes Define Quantization Table segments
func (enc *Encoder) writeDQT(writer *standard.Writer) {
	numTables := 1
	if enc.components == 3 {
		numTables = 2
	}
	for i := 0; i < numTables; i++ {
		data := make([]byte, 1+64)
		data[0] = byte(i) // Precision=0 (8-bit), Table ID=i
		for k := 0; k < 64; k++ {
			data[1+k] = byte(enc.qtables[i][common.Unzig[k]])
		}
		writer.WriteSegment(common.MarkerDQT, data)
	}
}

// writeSOF0 writes Start of Frame (Baseline DCT)
func (enc *Encoder) writeSOF0(writer *standard.Writer) {
	data := make([]byte, 6+len(enc.comps)*3)
	data[0] = 8 // precision
	binary.BigEndian.PutUint16(data[1:], uint16(enc.height))
	binary.BigEndian.PutUint16(data[3:], uint16(enc.width))
	data[5] = byte(len(enc.comps))
	for i, c := range enc.comps {
		data[6+i*3] = c.id
		data[7+i*3] = byte(c.h<<4 | c.v)
		data[8+i*3] = byte(c.slot)
	}
	writer.WriteSegment(common.MarkerSOF0, data)
}

// writeDHT writes one Define Huffman Table segment per table in use
func (enc *Encoder) writeDHT(writer *standard.Writer) {
	slots := 1
	if enc.components == 3 {
		slots = 2
	}
	for slot := 0; slot < slots; slot++ {
		for class := 0; class < 2; class++ {
			spec := enc.specs[class][slot]
			data := make([]byte, 0, 17+len(spec.Values))
			data = append(data, byte(class<<4|slot))
			for _, n := range spec.Bits {
				data = append(data, byte(n))
			}
			data = append(data, spec.Values...)
			writer.WriteSegment(common.MarkerDHT, data)
		}
	}
}

// writeSOS writes the Start of Scan header for a single interleaved scan
func (enc *Encoder) writeSOS(writer *standard.Writer) {
	data := make([]byte, 0, 4+len(enc.comps)*2)
	data = append(data, byte(len(enc.comps)))
	for _, c := range enc.comps {
		data = append(data, c.id, byte(c.slot<<4|c.slot))
	}
	data = append(data, 0, 63, 0) // Ss, Se, Ah/Al
	writer.WriteSegment(common.MarkerSOS, data)
}
