package jpegasm

import (
	"github.com/cocosip/go-jpegasm/jpeg/baseline"
)

// DefaultQuality is used by Encode and EncodeImage when Options.Quality is 0
const DefaultQuality = 90

// MaxCommentLength is the longest Options.Comment a COM segment can hold
const MaxCommentLength = baseline.MaxCommentLength

// Subsampling selects the chroma layout of colour output
type Subsampling = baseline.Subsampling

// Chroma layouts
const (
	Subsampling420 = baseline.Subsampling420
	Subsampling422 = baseline.Subsampling422
	Subsampling444 = baseline.Subsampling444
)

// Options configures Encode and EncodeImage. The zero value encodes at
// DefaultQuality with 4:2:0 chroma and standard Huffman tables.
type Options struct {
	// Quality 1-100; 0 selects DefaultQuality, other values are clamped
	Quality int
	// Subsampling of the chroma planes
	Subsampling Subsampling
	// RestartInterval in MCUs, 0 for none
	RestartInterval int
	// OptimizeCoding computes image-specific Huffman tables
	OptimizeCoding bool
	// Comment is stored in a COM segment when not empty. Comments longer
	// than MaxCommentLength bytes fail with StatusBadLength.
	Comment string
}

// DefaultOptions returns the options Encode uses for a nil *Options
func DefaultOptions() *Options {
	return &Options{Quality: DefaultQuality}
}

func (o *Options) codec() baseline.Options {
	if o == nil {
		o = DefaultOptions()
	}
	q := o.Quality
	if q == 0 {
		q = DefaultQuality
	}
	return baseline.Options{
		Quality:         q,
		Subsampling:     o.Subsampling,
		RestartInterval: o.RestartInterval,
		OptimizeCoding:  o.OptimizeCoding,
		Comment:         o.Comment,
	}
}

// ParseSubsampling accepts "420", "4:2:0", "422", "4:2:2", "444" and
// "4:4:4". An empty string selects 4:2:0.
func ParseSubsampling(s string) (Subsampling, error) {
	return baseline.ParseSubsampling(s)
}
