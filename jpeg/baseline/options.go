package baseline

import (
	"fmt"
	"strings"
)

// DefaultQuality is the quality used when none is configured
const DefaultQuality = 85

// MaxDimension is the largest width or height accepted by the codec
const MaxDimension = 65500

// Subsampling selects the chroma sampling layout for colour images
type Subsampling int

const (
	// Subsampling420 halves chroma resolution in both directions
	Subsampling420 Subsampling = iota
	// Subsampling422 halves chroma resolution horizontally
	Subsampling422
	// Subsampling444 keeps full chroma resolution
	Subsampling444
)

// String returns the conventional J:a:b notation
func (s Subsampling) String() string {
	switch s {
	case Subsampling420:
		return "4:2:0"
	case Subsampling422:
		return "4:2:2"
	case Subsampling444:
		return "4:4:4"
	}
	return fmt.Sprintf("Subsampling(%d)", int(s))
}

// lumaFactors returns the luma sampling factors relative to 1x1 chroma
func (s Subsampling) lumaFactors() (h, v int) {
	switch s {
	case Subsampling422:
		return 2, 1
	case Subsampling444:
		return 1, 1
	}
	return 2, 2
}

// ParseSubsampling accepts "420", "4:2:0", "422", "4:2:2", "444" and "4:4:4".
func ParseSubsampling(s string) (Subsampling, error) {
	switch strings.ReplaceAll(strings.TrimSpace(s), ":", "") {
	case "420", "":
		return Subsampling420, nil
	case "422":
		return Subsampling422, nil
	case "444":
		return Subsampling444, nil
	}
	return 0, fmt.Errorf("unknown chroma subsampling %q", s)
}

// Options controls encoding
type Options struct {
	// Quality 1-100, clamped
	Quality int
	// Chroma layout for 3-component images
	Subsampling Subsampling
	// MCUs between restart markers, 0 disables them
	RestartInterval int
	// Build image-specific Huffman tables instead of the standard ones
	OptimizeCoding bool
	// Written as a COM segment when not empty; at most MaxCommentLength
	// bytes, longer comments fail with BAD_LENGTH
	Comment string
}

// MaxCommentLength is the largest COM segment body
const MaxCommentLength = 0xFFFF - 2

// DefaultOptions returns the options used by Encode
func DefaultOptions() Options {
	return Options{Quality: DefaultQuality, Subsampling: Subsampling420}
}
