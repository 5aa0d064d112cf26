package standard

import (
	"bytes"
	"testing"

	"github.com/cocosip/go-jpegasm/jpeg/common"
)

func TestReadMarker(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		marker    uint16
		discarded int
	}{
		{"plain", []byte{0xFF, 0xD8}, common.MarkerSOI, 0},
		{"fill bytes", []byte{0xFF, 0xFF, 0xFF, 0xDB}, common.MarkerDQT, 0},
		{"garbage", []byte{0x12, 0x34, 0xFF, 0xC4}, common.MarkerDHT, 2},
		{"stuffed byte", []byte{0xFF, 0x00, 0xFF, 0xD9}, common.MarkerEOI, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data)
			marker, discarded, err := r.ReadMarker()
			if err != nil {
				t.Fatal(err)
			}
			if marker != tt.marker || discarded != tt.discarded {
				t.Errorf("got %s (%d discarded), want %s (%d)",
					common.MarkerName(marker), discarded, common.MarkerName(tt.marker), tt.discarded)
			}
			if r.Remaining() != 0 {
				t.Errorf("%d bytes left", r.Remaining())
			}
		})
	}

	r := NewReader([]byte{0x00, 0xFF})
	if _, _, err := r.ReadMarker(); common.CodeOf(err) != common.CodeInputEOF {
		t.Errorf("expected INPUT_EOF, got %v", err)
	}
}

func TestReadSegment(t *testing.T) {
	r := NewReader([]byte{0x00, 0x04, 0xAA, 0xBB, 0xCC})
	seg, err := r.ReadSegment()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(seg, []byte{0xAA, 0xBB}) {
		t.Errorf("segment = % x", seg)
	}
	if r.Pos() != 4 {
		t.Errorf("Pos() = %d, want 4", r.Pos())
	}
	if cap(seg) != 2 {
		t.Error("segment should not expose the rest of the stream")
	}

	tests := []struct {
		name string
		data []byte
		want common.Code
	}{
		{"short length", []byte{0x00}, common.CodeInputEOF},
		{"bogus length", []byte{0x00, 0x01}, common.CodeBadLength},
		{"truncated body", []byte{0x00, 0x10, 0x01}, common.CodeInputEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(tt.data).ReadSegment()
			if common.CodeOf(err) != tt.want {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReaderSkipAndSeek(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4})
	if err := r.Skip(3); err != nil {
		t.Fatal(err)
	}
	if b, _ := r.ReadByte(); b != 4 {
		t.Errorf("ReadByte = %d, want 4", b)
	}
	r.Seek(100)
	if r.Pos() != 4 {
		t.Errorf("Seek past end left Pos at %d", r.Pos())
	}
	r.Seek(0)
	if err := r.Skip(5); common.CodeOf(err) != common.CodeInputEOF {
		t.Errorf("expected INPUT_EOF, got %v", err)
	}
}
