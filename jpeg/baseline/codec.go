package baseline

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
)

var _ codec.Codec = (*BaselineCodec)(nil)

// ErrBitDepth is returned for source frames stored with more than 8 bits
var ErrBitDepth = errors.New("JPEG Baseline only supports 8-bit samples")

// BaselineCodec implements the external codec.Codec interface for
// JPEG Baseline (Process 1)
type BaselineCodec struct {
	quality int
}

// NewBaselineCodec creates a new JPEG Baseline codec
// quality: 1-100, where 100 is best quality (default 85)
func NewBaselineCodec(quality int) *BaselineCodec {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &BaselineCodec{quality: quality}
}

// Name returns the codec name
func (c *BaselineCodec) Name() string {
	return fmt.Sprintf("JPEG Baseline (Quality %d)", c.quality)
}

// TransferSyntax returns the transfer syntax this codec handles
func (c *BaselineCodec) TransferSyntax() *transfer.Syntax {
	return transfer.JPEGBaseline8Bit
}

// GetDefaultParameters returns the default codec parameters
func (c *BaselineCodec) GetDefaultParameters() codec.Parameters {
	return NewBaselineParameters().WithQuality(c.quality)
}

// parameters resolves typed or generic parameters
func (c *BaselineCodec) parameters(parameters codec.Parameters) *JPEGBaselineParameters {
	if parameters == nil {
		return NewBaselineParameters().WithQuality(c.quality)
	}
	if bp, ok := parameters.(*JPEGBaselineParameters); ok {
		return bp
	}

	// Fallback: copy known names from generic parameters
	bp := NewBaselineParameters().WithQuality(c.quality)
	for _, name := range []string{ParamQuality, ParamSubsampling, ParamRestartInterval, ParamOptimizeCoding} {
		if v := parameters.GetParameter(name); v != nil {
			bp.SetParameter(name, v)
		}
	}
	return bp
}

// Encode encodes pixel data using JPEG Baseline
func (c *BaselineCodec) Encode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, parameters codec.Parameters) error {
	frameInfo := oldPixelData.GetFrameInfo()
	if frameInfo == nil {
		return fmt.Errorf("failed to get frame info from source pixel data")
	}
	if frameInfo.BitsStored > 8 || frameInfo.BitsAllocated > 8 {
		return fmt.Errorf("%w (BitsStored=%d)", ErrBitDepth, frameInfo.BitsStored)
	}

	width := int(frameInfo.Width)
	height := int(frameInfo.Height)
	components := int(frameInfo.SamplesPerPixel)
	signed := frameInfo.PixelRepresentation != 0

	// Validate a copy; the caller's parameters stay as given
	params := *c.parameters(parameters)
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid JPEG Baseline parameters: %w", err)
	}
	opts := params.Options()

	frameCount := oldPixelData.FrameCount()
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameData, err := oldPixelData.GetFrame(frameIndex)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", frameIndex, err)
		}

		samples := frameData
		if components == 3 && frameInfo.PlanarConfiguration == 1 {
			samples = planarToInterleaved(frameData, width*height)
		}
		if signed {
			samples = flipSign(samples)
		}

		encoded, err := EncodeWithOptions(samples, width, height, components, opts)
		if err != nil {
			return fmt.Errorf("JPEG Baseline encode failed for frame %d: %w", frameIndex, err)
		}

		if err := newPixelData.AddFrame(encoded); err != nil {
			return fmt.Errorf("failed to add encoded frame %d: %w", frameIndex, err)
		}
	}

	return nil
}

// Decode decodes JPEG Baseline data
func (c *BaselineCodec) Decode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, parameters codec.Parameters) error {
	signed := false
	if info := oldPixelData.GetFrameInfo(); info != nil {
		signed = info.PixelRepresentation != 0
	}

	frameCount := oldPixelData.FrameCount()
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameData, err := oldPixelData.GetFrame(frameIndex)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", frameIndex, err)
		}

		decoded, _, _, _, err := Decode(frameData)
		if err != nil {
			return fmt.Errorf("JPEG Baseline decode failed for frame %d: %w", frameIndex, err)
		}
		if signed {
			decoded = flipSign(decoded)
		}

		if err := newPixelData.AddFrame(decoded); err != nil {
			return fmt.Errorf("failed to add decoded frame %d: %w", frameIndex, err)
		}
	}

	return nil
}

// planarToInterleaved turns RRR..GGG..BBB into RGBRGB..
func planarToInterleaved(data []byte, pixels int) []byte {
	if len(data) < pixels*3 {
		return data
	}
	out := make([]byte, pixels*3)
	for i := 0; i < pixels; i++ {
		out[i*3] = data[i]
		out[i*3+1] = data[pixels+i]
		out[i*3+2] = data[2*pixels+i]
	}
	return out
}

// flipSign maps two's complement 8-bit samples to offset binary and back
func flipSign(data []byte) []byte {
	out := make([]byte, len(data))
	for i, v := range data {
		out[i] = v ^ 0x80
	}
	return out
}

// RegisterBaselineCodec registers JPEG Baseline codec with the global registry
// quality: 1-100 (default 85)
func RegisterBaselineCodec(quality int) {
	c := NewBaselineCodec(quality)
	registry := codec.GetGlobalRegistry()
	registry.RegisterCodec(transfer.JPEGBaseline8Bit, c)
}

func init() {
	RegisterBaselineCodec(DefaultQuality)
}
