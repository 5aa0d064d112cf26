package jpegasm

import (
	"fmt"

	"github.com/cocosip/go-jpegasm/jpeg/baseline"
)

// Image is a decoded picture: packed RGB samples, row-major, top to bottom
type Image struct {
	Pix    []byte
	Width  int
	Height int
}

// EncodeJPEG compresses a packed RGB buffer of width*height*3 bytes.
//
// Zero or negative dimensions fail with StatusEmptyImage before any other
// check; dimensions above 65500 fail with StatusImageTooBig and a short
// buffer with StatusBufferSize. quality is clamped to 1..100. The output is
// a baseline JFIF stream with 4:2:0 chroma. pixels is only read.
func EncodeJPEG(pixels []byte, width, height, quality int) ([]byte, error) {
	return encode(pixels, width, height, 3, baseline.Options{Quality: quality})
}

// Encode is EncodeJPEG with explicit options. A nil opts uses
// DefaultOptions.
func Encode(pixels []byte, width, height int, opts *Options) ([]byte, error) {
	return encode(pixels, width, height, 3, opts.codec())
}

func encode(pixels []byte, width, height, components int, opts baseline.Options) ([]byte, error) {
	out, err := baseline.EncodeWithOptions(pixels, width, height, components, opts)
	if err != nil {
		return nil, toError(err)
	}
	return out, nil
}

// DecodeJPEG decompresses a baseline or extended-sequential JPEG stream to
// packed RGB. Grayscale streams are expanded to three equal channels.
//
// Malformed input fails with the status of the first problem found, for
// example StatusInputEmpty for no data or StatusNoSOI when the stream does
// not start with an SOI marker. No image is returned with an error.
func DecodeJPEG(data []byte) (img *Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = &Error{Status: StatusUnknown, Message: fmt.Sprintf("%s: %v", StatusUnknown.Template(), r)}
		}
	}()

	pix, width, height, derr := baseline.DecodeRGB(data)
	if derr != nil {
		return nil, toError(derr)
	}
	return &Image{Pix: pix, Width: width, Height: height}, nil
}

// Config describes a stream's frame header
type Config = baseline.Config

// DecodeConfig reads the frame header of data without decoding the image.
// Frames of unsupported processes are described with Supported set to
// false.
func DecodeConfig(data []byte) (Config, error) {
	cfg, err := baseline.DecodeConfig(data)
	if err != nil {
		return Config{}, toError(err)
	}
	return cfg, nil
}
