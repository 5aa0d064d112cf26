// Package jpegasm converts between packed 8-bit RGB pixel buffers and
// baseline JPEG streams.
//
// EncodeJPEG and DecodeJPEG are the two entry points. Each call either
// succeeds with a freshly allocated result and a nil error, or fails with a
// nil result and an *Error carrying a Status and a diagnostic message:
//
//	data, err := jpegasm.EncodeJPEG(pixels, 32, 32, 80)
//	if err != nil {
//		log.Printf("status %d: %v", jpegasm.StatusOf(err), err)
//	}
//
// Status values are the libjpeg message codes, so an empty image is 33
// (StatusEmptyImage) and a stream without an SOI marker is 55
// (StatusNoSOI). All calls are independent and safe for concurrent use.
package jpegasm
