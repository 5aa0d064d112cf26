package baseline

import (
	"github.com/cocosip/go-jpegasm/jpeg/common"
)

// ComponentInfo describes one frame component
type ComponentInfo struct {
	ID byte `json:"id"`
	H  int  `json:"h"`
	V  int  `json:"v"`
	Tq int  `json:"tq"`
}

// Config is the frame header of a JPEG stream
type Config struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Precision  int             `json:"precision"`
	Process    string          `json:"process"`
	Components []ComponentInfo `json:"components"`
	// Frame can be decoded by this package
	Supported bool `json:"supported"`
	// Restart interval defined before the first scan, if any
	RestartInterval int    `json:"restart_interval,omitempty"`
	ColorSpace      string `json:"color_space"`
	JFIF            bool   `json:"jfif"`
	Adobe           bool   `json:"adobe"`
}

// DecodeConfig parses the stream up to the first scan header without
// decoding entropy-coded data. Frames of any process are described.
func DecodeConfig(jpegData []byte) (Config, error) {
	d := &Decoder{}
	if err := d.decode(jpegData, true); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Width:           d.width,
		Height:          d.height,
		Precision:       d.precision,
		Process:         processName(d.sof),
		Supported:       common.IsSequentialHuffman(d.sof) && d.precision == 8 && (len(d.components) == 1 || len(d.components) == 3),
		RestartInterval: d.restartInt,
		JFIF:            d.jfif,
		Adobe:           d.adobe,
	}
	for _, c := range d.components {
		cfg.Components = append(cfg.Components, ComponentInfo{ID: c.ID, H: c.H, V: c.V, Tq: c.Tq})
	}
	switch len(d.components) {
	case 1:
		cfg.ColorSpace = "Gray"
	case 3:
		if d.colorTransform() {
			cfg.ColorSpace = "YCbCr"
		} else {
			cfg.ColorSpace = "RGB"
		}
	case 4:
		if d.adobe && d.adobeTransform == 2 {
			cfg.ColorSpace = "YCCK"
		} else {
			cfg.ColorSpace = "CMYK"
		}
	default:
		cfg.ColorSpace = "Unknown"
	}
	return cfg, nil
}

// Subsampling returns the chroma layout of a 3-component frame, if it is
// one of the layouts the encoder produces.
func (c Config) Subsampling() (Subsampling, bool) {
	if len(c.Components) != 3 || c.Components[1].H != 1 || c.Components[1].V != 1 ||
		c.Components[2].H != 1 || c.Components[2].V != 1 {
		return 0, false
	}
	switch [2]int{c.Components[0].H, c.Components[0].V} {
	case [2]int{2, 2}:
		return Subsampling420, true
	case [2]int{2, 1}:
		return Subsampling422, true
	case [2]int{1, 1}:
		return Subsampling444, true
	}
	return 0, false
}

func processName(sof uint16) string {
	switch sof {
	case common.MarkerSOF0:
		return "baseline"
	case common.MarkerSOF1:
		return "extended sequential"
	case common.MarkerSOF2:
		return "progressive"
	case common.MarkerSOF3:
		return "lossless"
	case common.MarkerSOF9:
		return "extended sequential, arithmetic"
	case common.MarkerSOF10:
		return "progressive, arithmetic"
	case common.MarkerSOF11:
		return "lossless, arithmetic"
	}
	return "hierarchical " + common.MarkerName(sof)
}
