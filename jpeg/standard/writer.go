package standard

import (
	"encoding/binary"
	"io"
)

// Writer provides utilities for writing JPEG data. The first write error is
// kept and returned by Err; later writes are no-ops.
type Writer struct {
	w   io.Writer
	buf [4]byte
	err error
}

// NewWriter creates a new JPEG writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(p)
}

// WriteByte writes a single byte
func (w *Writer) WriteByte(b byte) error {
	w.buf[0] = b
	w.write(w.buf[:1])
	return w.err
}

// WriteUint16 writes a 16-bit big-endian value
func (w *Writer) WriteUint16(v uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
	return w.err
}

// WriteMarker writes a JPEG marker
func (w *Writer) WriteMarker(marker uint16) error {
	return w.WriteUint16(marker)
}

// WriteSegment writes a marker segment. The length field is computed and
// includes itself (2 bytes); bodies longer than 65533 bytes are truncated.
func (w *Writer) WriteSegment(marker uint16, data []byte) error {
	if len(data) > 0xFFFF-2 {
		data = data[:0xFFFF-2]
	}
	binary.BigEndian.PutUint16(w.buf[:2], marker)
	binary.BigEndian.PutUint16(w.buf[2:4], uint16(len(data)+2))
	w.write(w.buf[:4])
	w.write(data)
	return w.err
}

// WriteBytes writes raw bytes
func (w *Writer) WriteBytes(data []byte) error {
	w.write(data)
	return w.err
}
