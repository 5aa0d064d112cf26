// Package imageio loads source pictures for the encoder and writes decoded
// output. JPEG input goes through jpegasm; other formats use the decoders
// registered with the image package.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/cocosip/go-jpegasm"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrBadSize is returned for a malformed WxH argument
var ErrBadSize = errors.New("size must be WIDTHxHEIGHT")

// IsJPEG reports whether data starts with an SOI marker
func IsJPEG(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8
}

// Decode decodes an encoded picture and names its format. Streams starting
// with an SOI marker always go to jpegasm: imaging imports image/jpeg, whose
// registration would otherwise win in image.Decode.
func Decode(data []byte) (image.Image, string, error) {
	if IsJPEG(data) {
		img, err := jpegasm.DecodeImage(data)
		if err != nil {
			return nil, "", err
		}
		return img, "jpeg", nil
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

// DecodeConfig reads the dimensions of an encoded picture without
// decoding it. JPEG headers are read by jpegasm.
func DecodeConfig(data []byte) (image.Config, string, error) {
	if IsJPEG(data) {
		cfg, err := jpegasm.DecodeConfig(data)
		if err != nil {
			return image.Config{}, "", err
		}
		return image.Config{ColorModel: color.NRGBAModel, Width: cfg.Width, Height: cfg.Height}, "jpeg", nil
	}
	return image.DecodeConfig(bytes.NewReader(data))
}

// Load reads and decodes the picture at path
func Load(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	img, format, err := Decode(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, format, nil
}

// ParseSize parses "WxH", for example "640x480"
func ParseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadSize, s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadSize, s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadSize, s)
	}
	return w, h, nil
}

// ReadRaw reads a packed RGB file of exactly width*height*3 bytes
func ReadRaw(path string, width, height int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if want := width * height * 3; len(data) != want {
		return nil, fmt.Errorf("raw file %s has %d bytes, %dx%d RGB needs %d",
			filepath.Base(path), len(data), width, height, want)
	}
	return data, nil
}

// Resize scales img with a Lanczos filter. A zero width or height keeps
// the aspect ratio.
func Resize(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// Save writes a decoded image: packed RGB for ".rgb" paths, PNG otherwise
func Save(path string, img *jpegasm.Image) error {
	if strings.EqualFold(filepath.Ext(path), ".rgb") {
		return os.WriteFile(path, img.Pix, 0o644)
	}
	return WritePNG(path, img.NRGBA())
}

// WritePNG encodes img as PNG at path
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
