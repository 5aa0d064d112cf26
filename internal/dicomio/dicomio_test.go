package dicomio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cocosip/go-dicom/pkg/dicom/dataset"
	"github.com/cocosip/go-dicom/pkg/dicom/element"
	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	"github.com/cocosip/go-dicom/pkg/dicom/tag"
	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/dicom/vr"
	"github.com/cocosip/go-dicom/pkg/dicom/writer"
	"github.com/cocosip/go-dicom/pkg/imaging"
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cocosip/go-jpegasm/jpeg/baseline"
)

const (
	testRows = 24
	testCols = 32
)

// writeNative writes an 8-bit MONOCHROME2 image in Explicit VR Little Endian
func writeNative(t *testing.T, path string) []byte {
	t.Helper()
	pix := make([]byte, testRows*testCols)
	for y := 0; y < testRows; y++ {
		for x := 0; x < testCols; x++ {
			pix[y*testCols+x] = uint8(40 + x*4 + y*2)
		}
	}

	ds := dataset.New()
	_ = ds.Add(element.NewString(tag.SOPClassUID, vr.UI, []string{"1.2.840.10008.5.1.4.1.1.7"}))
	_ = ds.Add(element.NewString(tag.SOPInstanceUID, vr.UI, []string{"1.2.3.4.5.6.7.8.9"}))
	_ = ds.Add(element.NewString(tag.Modality, vr.CS, []string{"OT"}))
	_ = ds.Add(element.NewUnsignedShort(tag.Rows, []uint16{testRows}))
	_ = ds.Add(element.NewUnsignedShort(tag.Columns, []uint16{testCols}))
	_ = ds.Add(element.NewUnsignedShort(tag.BitsAllocated, []uint16{8}))
	_ = ds.Add(element.NewUnsignedShort(tag.BitsStored, []uint16{8}))
	_ = ds.Add(element.NewUnsignedShort(tag.HighBit, []uint16{7}))
	_ = ds.Add(element.NewUnsignedShort(tag.SamplesPerPixel, []uint16{1}))
	_ = ds.Add(element.NewUnsignedShort(tag.PixelRepresentation, []uint16{0}))
	_ = ds.Add(element.NewString(tag.PhotometricInterpretation, vr.CS, []string{"MONOCHROME2"}))
	_ = ds.Add(element.NewOtherByte(tag.PixelData, pix))

	require.NoError(t, writer.WriteFile(path, ds, writer.WithTransferSyntax(transfer.ExplicitVRLittleEndian)))
	return pix
}

// decodeFirstFrame parses a JPEG Baseline file and decodes frame 0
func decodeFirstFrame(t *testing.T, path string) (*parser.ParseResult, []byte) {
	t.Helper()
	res, err := parser.ParseFile(path, parser.WithReadOption(parser.ReadAll))
	require.NoError(t, err)
	require.Equal(t, transfer.JPEGBaseline8Bit.UID().UID(), res.TransferSyntax.UID().UID())

	pd, err := imaging.CreatePixelData(res.Dataset)
	require.NoError(t, err)
	require.True(t, pd.IsEncapsulated())

	c, ok := codec.GetGlobalRegistry().GetCodec(transfer.JPEGBaseline8Bit)
	require.True(t, ok)
	decoded, err := pd.Decode(c, nil)
	require.NoError(t, err)
	frame, err := decoded.GetFrame(0)
	require.NoError(t, err)
	return res, frame
}

func TestTranscodeFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "native.dcm")
	src := writeNative(t, in)

	out := filepath.Join(dir, "jpeg.dcm")
	info, err := New(95, zaptest.NewLogger(t)).TranscodeFile(in, out)
	require.NoError(t, err)
	assert.Equal(t, uint16(testRows), info.Rows)
	assert.Equal(t, uint16(testCols), info.Columns)
	assert.Equal(t, uint16(8), info.BitsStored)
	assert.Equal(t, uint16(1), info.SamplesPerPixel)
	assert.Equal(t, "MONOCHROME2", info.Photometric)
	assert.Equal(t, transfer.ExplicitVRLittleEndian.UID().UID(), info.TransferSyntax)

	res, frame := decodeFirstFrame(t, out)
	assert.Equal(t, uint16(testRows), res.Dataset.TryGetUInt16(tag.Rows, 0))
	assert.Equal(t, uint16(testCols), res.Dataset.TryGetUInt16(tag.Columns, 0))
	require.Len(t, frame, len(src))

	maxDiff := 0
	for i := range src {
		d := int(src[i]) - int(frame[i])
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	assert.LessOrEqual(t, maxDiff, 8, "quality 95 round trip")
}

func TestTranscodeFileQuality(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "native.dcm")
	writeNative(t, in)

	high := filepath.Join(dir, "q95.dcm")
	low := filepath.Join(dir, "q10.dcm")
	_, err := New(95, nil).TranscodeFile(in, high)
	require.NoError(t, err)
	_, err = New(10, nil).TranscodeFile(in, low)
	require.NoError(t, err)

	hi, err := os.Stat(high)
	require.NoError(t, err)
	lo, err := os.Stat(low)
	require.NoError(t, err)
	assert.Greater(t, hi.Size(), lo.Size())

	// Per-call quality leaves the registered codec alone
	c, ok := codec.GetGlobalRegistry().GetCodec(transfer.JPEGBaseline8Bit)
	require.True(t, ok)
	assert.Equal(t, baseline.NewBaselineCodec(baseline.DefaultQuality).Name(), c.Name())
}

func TestTranscodeFileAlreadyBaseline(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "native.dcm")
	writeNative(t, in)
	first := filepath.Join(dir, "jpeg.dcm")
	_, err := New(90, nil).TranscodeFile(in, first)
	require.NoError(t, err)

	copied := filepath.Join(dir, "copy.dcm")
	info, err := New(90, nil).TranscodeFile(first, copied)
	require.NoError(t, err)
	assert.Equal(t, transfer.JPEGBaseline8Bit.UID().UID(), info.TransferSyntax)

	_, frame := decodeFirstFrame(t, copied)
	assert.Len(t, frame, testRows*testCols)
}

func TestTranscodeRejectsWideSamples(t *testing.T) {
	dir := t.TempDir()
	ds := dataset.New()
	_ = ds.Add(element.NewString(tag.SOPClassUID, vr.UI, []string{"1.2.840.10008.5.1.4.1.1.7"}))
	_ = ds.Add(element.NewString(tag.SOPInstanceUID, vr.UI, []string{"1.2.3.4.5"}))
	_ = ds.Add(element.NewUnsignedShort(tag.Rows, []uint16{4}))
	_ = ds.Add(element.NewUnsignedShort(tag.Columns, []uint16{4}))
	_ = ds.Add(element.NewUnsignedShort(tag.BitsAllocated, []uint16{16}))
	_ = ds.Add(element.NewUnsignedShort(tag.BitsStored, []uint16{12}))
	_ = ds.Add(element.NewUnsignedShort(tag.HighBit, []uint16{11}))
	_ = ds.Add(element.NewUnsignedShort(tag.SamplesPerPixel, []uint16{1}))
	_ = ds.Add(element.NewUnsignedShort(tag.PixelRepresentation, []uint16{0}))
	_ = ds.Add(element.NewString(tag.PhotometricInterpretation, vr.CS, []string{"MONOCHROME2"}))
	_ = ds.Add(element.NewOtherWord(tag.PixelData, make([]byte, 4*4*2)))
	in := filepath.Join(dir, "ct.dcm")
	require.NoError(t, writer.WriteFile(in, ds, writer.WithTransferSyntax(transfer.ExplicitVRLittleEndian)))

	out := filepath.Join(dir, "out.dcm")
	info, err := New(90, nil).TranscodeFile(in, out)
	assert.ErrorIs(t, err, baseline.ErrBitDepth)
	require.NotNil(t, info)
	assert.Equal(t, uint16(12), info.BitsStored)
	assert.NoFileExists(t, out)
}

func TestNewQuality(t *testing.T) {
	assert.Equal(t, 70, New(70, nil).Quality())
	assert.Equal(t, baseline.DefaultQuality, New(0, nil).Quality())
	assert.Equal(t, baseline.DefaultQuality, New(101, nil).Quality())
}

func TestTranscodeMissingFile(t *testing.T) {
	dir := t.TempDir()
	tr := New(90, zaptest.NewLogger(t))

	info, err := tr.TranscodeFile(filepath.Join(dir, "absent.dcm"), filepath.Join(dir, "out.dcm"))
	require.Error(t, err)
	assert.Nil(t, info)
	assert.Contains(t, err.Error(), "absent.dcm")
}

func TestSameSyntax(t *testing.T) {
	assert.True(t, sameSyntax(transfer.JPEGBaseline8Bit, transfer.JPEGBaseline8Bit))
	assert.False(t, sameSyntax(transfer.ExplicitVRLittleEndian, transfer.JPEGBaseline8Bit))
	assert.False(t, sameSyntax(nil, transfer.JPEGBaseline8Bit))
}
