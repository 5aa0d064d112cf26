package codec

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
)

var _ imagetypes.PixelData = (*PixelData)(nil)

// PixelData is an in-memory implementation of imagetypes.PixelData that
// holds one byte slice per frame
type PixelData struct {
	frames       [][]byte
	frameInfo    *imagetypes.FrameInfo
	encapsulated bool
}

// NewPixelData creates native (uncompressed) pixel data with the given frame info
func NewPixelData(frameInfo *imagetypes.FrameInfo) *PixelData {
	return &PixelData{frameInfo: frameInfo}
}

// NewEncapsulatedPixelData creates pixel data whose frames are compressed
// bitstreams
func NewEncapsulatedPixelData(frameInfo *imagetypes.FrameInfo) *PixelData {
	return &PixelData{frameInfo: frameInfo, encapsulated: true}
}

// GetFrame returns the pixel data for the specified frame (0-indexed)
func (p *PixelData) GetFrame(frameIndex int) ([]byte, error) {
	if frameIndex < 0 || frameIndex >= len(p.frames) {
		return nil, fmt.Errorf("frame %d out of range (%d frames)", frameIndex, len(p.frames))
	}
	return p.frames[frameIndex], nil
}

// AddFrame appends a copy of frameData
func (p *PixelData) AddFrame(frameData []byte) error {
	p.frames = append(p.frames, append([]byte(nil), frameData...))
	return nil
}

// FrameCount returns the number of frames in the pixel data
func (p *PixelData) FrameCount() int {
	return len(p.frames)
}

// GetFrameInfo returns frame metadata for codec operations
func (p *PixelData) GetFrameInfo() *imagetypes.FrameInfo {
	return p.frameInfo
}

// IsEncapsulated returns true if pixel data is encapsulated (compressed)
func (p *PixelData) IsEncapsulated() bool {
	return p.encapsulated
}

// FrameSize returns the uncompressed size of one frame in bytes
func FrameSize(info *imagetypes.FrameInfo) int {
	if info == nil {
		return 0
	}
	bytesPerSample := (int(info.BitsAllocated) + 7) / 8
	return int(info.Width) * int(info.Height) * int(info.SamplesPerPixel) * bytesPerSample
}
