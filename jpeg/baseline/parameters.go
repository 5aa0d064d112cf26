package baseline

import (
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
)

// Ensure JPEGBaselineParameters implements codec.Parameters
var _ codec.Parameters = (*JPEGBaselineParameters)(nil)

// Parameter names understood by GetParameter and SetParameter
const (
	ParamQuality         = "quality"
	ParamSubsampling     = "subsampling"
	ParamRestartInterval = "restartInterval"
	ParamOptimizeCoding  = "optimizeCoding"
)

// JPEGBaselineParameters contains parameters for JPEG Baseline compression
type JPEGBaselineParameters struct {
	// Quality controls the JPEG compression quality (1-100)
	// - 100: Best quality, minimal compression
	// - 85:  High quality (default)
	// - 50:  Lower quality, higher compression
	Quality int

	// Subsampling of colour images; grayscale ignores it
	Subsampling Subsampling

	// RestartInterval in MCUs, 0 disables restart markers
	RestartInterval int

	// OptimizeCoding builds per-frame Huffman tables
	OptimizeCoding bool

	// internal storage for compatibility with generic parameter interface
	params map[string]interface{}
}

// NewBaselineParameters creates a new JPEGBaselineParameters with default values
func NewBaselineParameters() *JPEGBaselineParameters {
	return &JPEGBaselineParameters{
		Quality:     DefaultQuality,
		Subsampling: Subsampling420,
		params:      make(map[string]interface{}),
	}
}

// GetParameter retrieves a parameter by name (implements codec.Parameters)
func (p *JPEGBaselineParameters) GetParameter(name string) interface{} {
	switch name {
	case ParamQuality:
		return p.Quality
	case ParamSubsampling:
		return p.Subsampling.String()
	case ParamRestartInterval:
		return p.RestartInterval
	case ParamOptimizeCoding:
		return p.OptimizeCoding
	default:
		return p.params[name]
	}
}

// SetParameter sets a parameter value (implements codec.Parameters).
// Values of the wrong type are ignored.
func (p *JPEGBaselineParameters) SetParameter(name string, value interface{}) {
	switch name {
	case ParamQuality:
		if v, ok := value.(int); ok {
			p.Quality = v
		}
	case ParamSubsampling:
		switch v := value.(type) {
		case Subsampling:
			p.Subsampling = v
		case string:
			if s, err := ParseSubsampling(v); err == nil {
				p.Subsampling = s
			}
		}
	case ParamRestartInterval:
		if v, ok := value.(int); ok {
			p.RestartInterval = v
		}
	case ParamOptimizeCoding:
		if v, ok := value.(bool); ok {
			p.OptimizeCoding = v
		}
	default:
		if p.params == nil {
			p.params = make(map[string]interface{})
		}
		p.params[name] = value
	}
}

// Validate checks if the parameters are valid, resetting out of range
// values to their defaults
func (p *JPEGBaselineParameters) Validate() error {
	if p.Quality < 1 || p.Quality > 100 {
		p.Quality = DefaultQuality
	}
	if p.Subsampling < Subsampling420 || p.Subsampling > Subsampling444 {
		p.Subsampling = Subsampling420
	}
	if p.RestartInterval < 0 || p.RestartInterval > 0xFFFF {
		p.RestartInterval = 0
	}
	return nil
}

// WithQuality sets the quality and returns the parameters for chaining
func (p *JPEGBaselineParameters) WithQuality(quality int) *JPEGBaselineParameters {
	p.Quality = quality
	return p
}

// WithSubsampling sets the chroma layout and returns the parameters for chaining
func (p *JPEGBaselineParameters) WithSubsampling(s Subsampling) *JPEGBaselineParameters {
	p.Subsampling = s
	return p
}

// Options converts the parameters to encoder options
func (p *JPEGBaselineParameters) Options() Options {
	return Options{
		Quality:         p.Quality,
		Subsampling:     p.Subsampling,
		RestartInterval: p.RestartInterval,
		OptimizeCoding:  p.OptimizeCoding,
	}
}
