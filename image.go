package jpegasm

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// NRGBA returns the image as an opaque *image.NRGBA
func (m *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	n := m.Width * m.Height
	for i := 0; i < n; i++ {
		d := dst.Pix[i*4 : i*4+4]
		d[0], d[1], d[2], d[3] = m.Pix[i*3], m.Pix[i*3+1], m.Pix[i*3+2], 0xFF
	}
	return dst
}

// EncodeImage encodes any image.Image. Translucent pixels are composited
// over white; *image.Gray sources are written as single-component JPEG.
func EncodeImage(img image.Image, opts *Options) ([]byte, error) {
	b := img.Bounds()
	if gray, ok := img.(*image.Gray); ok {
		pix := make([]byte, b.Dx()*b.Dy())
		for y := 0; y < b.Dy(); y++ {
			copy(pix[y*b.Dx():(y+1)*b.Dx()], gray.Pix[y*gray.Stride:])
		}
		return encode(pix, b.Dx(), b.Dy(), 1, opts.codec())
	}

	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Pt(0, 0), 1.0)
	return encode(packRGB(flat), b.Dx(), b.Dy(), 3, opts.codec())
}

// DecodeImage decodes data to an opaque *image.NRGBA
func DecodeImage(data []byte) (*image.NRGBA, error) {
	img, err := DecodeJPEG(data)
	if err != nil {
		return nil, err
	}
	return img.NRGBA(), nil
}

// packRGB drops the alpha channel of an image with origin (0, 0)
func packRGB(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		dst := out[y*w*3:]
		for x := 0; x < w; x++ {
			dst[x*3], dst[x*3+1], dst[x*3+2] = src[x*4], src[x*4+1], src[x*4+2]
		}
	}
	return out
}
