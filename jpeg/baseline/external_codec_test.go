package baseline

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	pixels "github.com/cocosip/go-jpegasm/codec"
	"github.com/cocosip/go-jpegasm/jpeg/common"
)

func grayFrameInfo(width, height int) *imagetypes.FrameInfo {
	return &imagetypes.FrameInfo{
		Width:                     uint16(width),
		Height:                    uint16(height),
		BitsAllocated:             8,
		BitsStored:                8,
		HighBit:                   7,
		SamplesPerPixel:           1,
		PixelRepresentation:       0,
		PlanarConfiguration:       0,
		PhotometricInterpretation: "MONOCHROME2",
	}
}

func rgbFrameInfo(width, height int) *imagetypes.FrameInfo {
	info := grayFrameInfo(width, height)
	info.SamplesPerPixel = 3
	info.PhotometricInterpretation = "RGB"
	return info
}

func TestBaselineCodecInterface(t *testing.T) {
	baselineCodec := NewBaselineCodec(85)

	var _ codec.Codec = baselineCodec

	name := baselineCodec.Name()
	if name != "JPEG Baseline (Quality 85)" {
		t.Errorf("Name() = %q", name)
	}

	ts := baselineCodec.TransferSyntax()
	if ts == nil {
		t.Fatal("Transfer syntax should not be nil")
	}
	if ts.UID().UID() != transfer.JPEGBaseline8Bit.UID().UID() {
		t.Errorf("Transfer syntax UID mismatch: got %s, want %s",
			ts.UID().UID(), transfer.JPEGBaseline8Bit.UID().UID())
	}

	if q := NewBaselineCodec(0).GetDefaultParameters().GetParameter(ParamQuality); q != DefaultQuality {
		t.Errorf("default quality = %v, want %d", q, DefaultQuality)
	}
}

func TestBaselineCodecEncodeDecode(t *testing.T) {
	width, height := 64, 64
	pixelData := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixelData[y*width+x] = byte((x + y*2) % 256)
		}
	}

	frameInfo := grayFrameInfo(width, height)
	src := pixels.NewPixelData(frameInfo)
	src.AddFrame(pixelData)

	baselineCodec := NewBaselineCodec(85)

	encoded := pixels.NewEncapsulatedPixelData(frameInfo)
	if err := baselineCodec.Encode(src, encoded, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	encodedData, _ := encoded.GetFrame(0)
	t.Logf("Compressed size: %d bytes (%.2fx)", len(encodedData), float64(len(pixelData))/float64(len(encodedData)))
	if !bytes.HasPrefix(encodedData, []byte{0xFF, 0xD8}) {
		t.Fatal("encoded frame does not start with SOI")
	}

	decoded := pixels.NewPixelData(frameInfo)
	if err := baselineCodec.Decode(encoded, decoded, nil); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	decodedData, _ := decoded.GetFrame(0)
	if len(decodedData) != len(pixelData) {
		t.Fatalf("Decoded size mismatch: got %d, want %d", len(decodedData), len(pixelData))
	}
	if p := psnr(pixelData, decodedData); p < 30 {
		t.Errorf("PSNR too low: %.2f dB", p)
	}
}

func TestBaselineCodecRGB(t *testing.T) {
	width, height := 48, 32
	pixelData := gradientRGB(width, height)

	frameInfo := rgbFrameInfo(width, height)
	src := pixels.NewPixelData(frameInfo)
	src.AddFrame(pixelData)

	baselineCodec := NewBaselineCodec(90)
	encoded := pixels.NewEncapsulatedPixelData(frameInfo)
	if err := baselineCodec.Encode(src, encoded, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded := pixels.NewPixelData(frameInfo)
	if err := baselineCodec.Decode(encoded, decoded, nil); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	decodedData, _ := decoded.GetFrame(0)
	if len(decodedData) != width*height*3 {
		t.Fatalf("Decoded size mismatch: got %d", len(decodedData))
	}
	if p := psnr(pixelData, decodedData); p < 30 {
		t.Errorf("PSNR too low: %.2f dB", p)
	}
}

func TestBaselineCodecPlanar(t *testing.T) {
	width, height := 16, 16
	interleaved := gradientRGB(width, height)
	planar := make([]byte, len(interleaved))
	n := width * height
	for i := 0; i < n; i++ {
		planar[i] = interleaved[i*3]
		planar[n+i] = interleaved[i*3+1]
		planar[2*n+i] = interleaved[i*3+2]
	}

	info := rgbFrameInfo(width, height)
	planarInfo := rgbFrameInfo(width, height)
	planarInfo.PlanarConfiguration = 1

	baselineCodec := NewBaselineCodec(85)
	a := pixels.NewPixelData(info)
	a.AddFrame(interleaved)
	b := pixels.NewPixelData(planarInfo)
	b.AddFrame(planar)

	encA := pixels.NewEncapsulatedPixelData(info)
	encB := pixels.NewEncapsulatedPixelData(planarInfo)
	if err := baselineCodec.Encode(a, encA, nil); err != nil {
		t.Fatal(err)
	}
	if err := baselineCodec.Encode(b, encB, nil); err != nil {
		t.Fatal(err)
	}
	frameA, _ := encA.GetFrame(0)
	frameB, _ := encB.GetFrame(0)
	if !bytes.Equal(frameA, frameB) {
		t.Error("planar input encoded differently from interleaved input")
	}
}

func TestBaselineCodecSigned(t *testing.T) {
	width, height := 16, 16
	info := grayFrameInfo(width, height)
	info.PixelRepresentation = 1

	// Constant -100 in two's complement
	pixelData := bytes.Repeat([]byte{0x9C}, width*height)
	src := pixels.NewPixelData(info)
	src.AddFrame(pixelData)

	baselineCodec := NewBaselineCodec(95)
	encoded := pixels.NewEncapsulatedPixelData(info)
	if err := baselineCodec.Encode(src, encoded, nil); err != nil {
		t.Fatal(err)
	}
	decoded := pixels.NewPixelData(info)
	if err := baselineCodec.Decode(encoded, decoded, nil); err != nil {
		t.Fatal(err)
	}
	out, _ := decoded.GetFrame(0)
	for i, v := range out {
		if d := int(int8(v)) + 100; d < -2 || d > 2 {
			t.Fatalf("sample %d decoded as %d, want -100", i, int8(v))
		}
	}
}

func TestBaselineCodecRejectsWideSamples(t *testing.T) {
	info := grayFrameInfo(8, 8)
	info.BitsAllocated = 16
	info.BitsStored = 12
	src := pixels.NewPixelData(info)
	src.AddFrame(make([]byte, 128))

	err := NewBaselineCodec(85).Encode(src, pixels.NewEncapsulatedPixelData(info), nil)
	if !errors.Is(err, ErrBitDepth) {
		t.Errorf("expected ErrBitDepth, got %v", err)
	}
}

func TestBaselineCodecDecodeError(t *testing.T) {
	info := grayFrameInfo(8, 8)
	src := pixels.NewEncapsulatedPixelData(info)
	src.AddFrame([]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE})

	err := NewBaselineCodec(85).Decode(src, pixels.NewPixelData(info), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, common.ErrNoSOI) {
		t.Errorf("expected a NO_SOI error, got %v", err)
	}
}

func TestBaselineCodecWithParameters(t *testing.T) {
	width, height := 64, 64
	pixelData := noisy(width * height)

	frameInfo := grayFrameInfo(width, height)
	src := pixels.NewPixelData(frameInfo)
	src.AddFrame(pixelData)

	baselineCodec := NewBaselineCodec(85)

	encodeWith := func(params codec.Parameters) []byte {
		t.Helper()
		encoded := pixels.NewEncapsulatedPixelData(frameInfo)
		if err := baselineCodec.Encode(src, encoded, params); err != nil {
			t.Fatalf("Encode with parameters failed: %v", err)
		}
		data, _ := encoded.GetFrame(0)
		return data
	}

	generic := codec.NewBaseParameters()
	generic.SetParameter("quality", 95)
	typed := NewBaselineParameters().WithQuality(95)

	fromGeneric := encodeWith(generic)
	fromTyped := encodeWith(typed)
	defaults := encodeWith(nil)

	if !bytes.Equal(fromGeneric, fromTyped) {
		t.Error("generic and typed parameters produced different streams")
	}
	if len(fromTyped) <= len(defaults) {
		t.Errorf("quality 95 (%d bytes) should be larger than quality 85 (%d bytes)", len(fromTyped), len(defaults))
	}

	restart := NewBaselineParameters()
	restart.SetParameter(ParamRestartInterval, 2)
	cfg, err := DecodeConfig(encodeWith(restart))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RestartInterval != 2 {
		t.Errorf("RestartInterval = %d, want 2", cfg.RestartInterval)
	}
}

func TestBaselineCodecKeepsCallerParameters(t *testing.T) {
	width, height := 16, 16
	frameInfo := grayFrameInfo(width, height)
	src := pixels.NewPixelData(frameInfo)
	src.AddFrame(noisy(width * height))

	params := NewBaselineParameters().WithQuality(0)
	params.RestartInterval = -5
	params.Subsampling = Subsampling(9)

	encoded := pixels.NewEncapsulatedPixelData(frameInfo)
	if err := NewBaselineCodec(85).Encode(src, encoded, params); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if encoded.FrameCount() != 1 {
		t.Fatalf("FrameCount = %d, want 1", encoded.FrameCount())
	}

	if params.Quality != 0 || params.RestartInterval != -5 || params.Subsampling != Subsampling(9) {
		t.Errorf("parameters modified by Encode: %+v", *params)
	}
}

func TestBaselineParameters(t *testing.T) {
	p := NewBaselineParameters()
	p.SetParameter(ParamSubsampling, "4:4:4")
	p.SetParameter(ParamOptimizeCoding, true)
	p.SetParameter(ParamQuality, "high") // wrong type is ignored
	p.SetParameter("custom", 7)

	if p.Subsampling != Subsampling444 {
		t.Errorf("Subsampling = %v", p.Subsampling)
	}
	if !p.OptimizeCoding {
		t.Error("OptimizeCoding not set")
	}
	if p.Quality != DefaultQuality {
		t.Errorf("Quality = %d", p.Quality)
	}
	if p.GetParameter("custom") != 7 {
		t.Error("custom parameter lost")
	}
	if p.GetParameter(ParamSubsampling) != "4:4:4" {
		t.Errorf("subsampling parameter = %v", p.GetParameter(ParamSubsampling))
	}

	p.Quality = 500
	p.RestartInterval = -3
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.Quality != DefaultQuality || p.RestartInterval != 0 {
		t.Errorf("Validate left %d/%d", p.Quality, p.RestartInterval)
	}
}

func TestBaselineCodecRegistry(t *testing.T) {
	RegisterBaselineCodec(85)

	registry := codec.GetGlobalRegistry()
	retrievedCodec, exists := registry.GetCodec(transfer.JPEGBaseline8Bit)
	if !exists {
		t.Fatal("Codec not found in registry")
	}
	if retrievedCodec == nil {
		t.Fatal("Retrieved codec is nil")
	}
	t.Logf("Retrieved codec name: %s", retrievedCodec.Name())

	width, height := 32, 32
	pixelData := make([]byte, width*height)
	for i := range pixelData {
		pixelData[i] = byte(i % 256)
	}

	frameInfo := grayFrameInfo(width, height)
	src := pixels.NewPixelData(frameInfo)
	src.AddFrame(pixelData)

	encoded := pixels.NewEncapsulatedPixelData(frameInfo)
	if err := retrievedCodec.Encode(src, encoded, nil); err != nil {
		t.Fatalf("Encode with retrieved codec failed: %v", err)
	}

	decoded := pixels.NewPixelData(frameInfo)
	if err := retrievedCodec.Decode(encoded, decoded, nil); err != nil {
		t.Fatalf("Decode with retrieved codec failed: %v", err)
	}
	if decoded.FrameCount() != 1 {
		t.Errorf("FrameCount = %d, want 1", decoded.FrameCount())
	}
}

func TestBaselineQualityLevels(t *testing.T) {
	width, height := 64, 64
	pixelData := noisy(width * height)

	frameInfo := grayFrameInfo(width, height)
	src := pixels.NewPixelData(frameInfo)
	src.AddFrame(pixelData)

	for _, quality := range []int{50, 75, 85, 95} {
		t.Run(fmt.Sprintf("Quality_%d", quality), func(t *testing.T) {
			c := NewBaselineCodec(quality)
			encoded := pixels.NewEncapsulatedPixelData(frameInfo)
			if err := c.Encode(src, encoded, nil); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			decoded := pixels.NewPixelData(frameInfo)
			if err := c.Decode(encoded, decoded, nil); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			encodedData, _ := encoded.GetFrame(0)
			decodedData, _ := decoded.GetFrame(0)
			t.Logf("Quality %d: %d bytes, PSNR %.2f dB", quality, len(encodedData), psnr(pixelData, decodedData))
		})
	}
}

func TestBaselineCodecMultiFrame(t *testing.T) {
	width, height := 16, 8
	frameInfo := grayFrameInfo(width, height)
	src := pixels.NewPixelData(frameInfo)
	for f := 0; f < 3; f++ {
		src.AddFrame(bytes.Repeat([]byte{byte(40 + f*80)}, width*height))
	}

	c := NewBaselineCodec(90)
	encoded := pixels.NewEncapsulatedPixelData(frameInfo)
	if err := c.Encode(src, encoded, nil); err != nil {
		t.Fatal(err)
	}
	if encoded.FrameCount() != 3 {
		t.Fatalf("encoded %d frames, want 3", encoded.FrameCount())
	}
	decoded := pixels.NewPixelData(frameInfo)
	if err := c.Decode(encoded, decoded, nil); err != nil {
		t.Fatal(err)
	}
	for f := 0; f < 3; f++ {
		frame, _ := decoded.GetFrame(f)
		want := 40 + f*80
		if d := int(frame[0]) - want; d < -2 || d > 2 {
			t.Errorf("frame %d: sample %d, want %d", f, frame[0], want)
		}
	}
}
