package standard

import (
	"encoding/binary"

	"github.com/cocosip/go-jpegasm/jpeg/common"
)

// Reader walks the marker structure of an in-memory JPEG stream. Running
// out of data is reported as common.ErrInputEOF.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new JPEG reader over data
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current offset
func (r *Reader) Pos() int {
	return r.pos
}

// Seek moves to an absolute offset
func (r *Reader) Seek(pos int) {
	if pos > len(r.data) {
		pos = len(r.data)
	}
	r.pos = pos
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Data returns the underlying stream
func (r *Reader) Data() []byte {
	return r.data
}

// ReadByte reads a single byte
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, common.Errorf(common.CodeInputEOF)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint16 reads a 16-bit big-endian value
func (r *Reader) ReadUint16() (uint16, error) {
	if r.Remaining() < 2 {
		r.pos = len(r.data)
		return 0, common.Errorf(common.CodeInputEOF)
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadMarker finds the next marker. Bytes that are not part of a marker are
// skipped and counted in discarded; 0xFF fill bytes are not counted.
func (r *Reader) ReadMarker() (marker uint16, discarded int, err error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, discarded, err
		}
		if b != 0xFF {
			discarded++
			continue
		}
		// Skip any padding 0xFF bytes
		for {
			b, err = r.ReadByte()
			if err != nil {
				return 0, discarded, err
			}
			if b != 0xFF {
				break
			}
		}
		// 0x00 is a stuffed byte inside entropy data, not a marker
		if b == 0x00 {
			discarded += 2
			continue
		}
		return 0xFF00 | uint16(b), discarded, nil
	}
}

// ReadSegment reads a length-prefixed segment body. The returned slice
// aliases the stream.
func (r *Reader) ReadSegment() ([]byte, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	// Length includes itself (2 bytes)
	if length < 2 {
		return nil, common.Errorf(common.CodeBadLength)
	}

	n := int(length) - 2
	if r.Remaining() < n {
		r.pos = len(r.data)
		return nil, common.Errorf(common.CodeInputEOF)
	}
	data := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return data, nil
}

// Skip skips n bytes
func (r *Reader) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	if r.Remaining() < n {
		r.pos = len(r.data)
		return common.Errorf(common.CodeInputEOF)
	}
	r.pos += n
	return nil
}
