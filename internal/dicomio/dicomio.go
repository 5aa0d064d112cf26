// Package dicomio re-encodes the pixel data of DICOM files as JPEG
// Baseline through the go-dicom transcoder.
package dicomio

import (
	"fmt"
	"strings"

	"github.com/cocosip/go-dicom/pkg/dicom/dataset"
	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	"github.com/cocosip/go-dicom/pkg/dicom/tag"
	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/dicom/writer"
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
	"go.uber.org/zap"

	"github.com/cocosip/go-jpegasm/jpeg/baseline"
)

// maxObjectSize bounds a single element read from the source file
const maxObjectSize = 512 * 1024 * 1024

// Info describes the image in a DICOM dataset
type Info struct {
	Rows            uint16 `json:"rows"`
	Columns         uint16 `json:"columns"`
	BitsStored      uint16 `json:"bits_stored"`
	SamplesPerPixel uint16 `json:"samples_per_pixel"`
	Photometric     string `json:"photometric,omitempty"`
	TransferSyntax  string `json:"transfer_syntax"`
}

// Transcoder converts DICOM files to JPEG Baseline 8-bit
type Transcoder struct {
	quality int
	logger  *zap.Logger
}

// New creates a transcoder. Quality outside 1..100 selects the codec
// default; a nil logger discards output.
func New(quality int, logger *zap.Logger) *Transcoder {
	if quality < 1 || quality > 100 {
		quality = baseline.DefaultQuality
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcoder{quality: quality, logger: logger}
}

// Quality returns the JPEG quality used for new files
func (t *Transcoder) Quality() int {
	return t.quality
}

// TranscodeFile reads the DICOM file at in and writes a JPEG Baseline copy
// to out. It returns the source image description.
func (t *Transcoder) TranscodeFile(in, out string) (*Info, error) {
	res, err := parser.ParseFile(in,
		parser.WithReadOption(parser.ReadAll),
		parser.WithLargeObjectSize(maxObjectSize),
	)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", in, err)
	}
	ds := res.Dataset
	sourceTS := res.TransferSyntax

	info := describe(ds, sourceTS)
	t.logger.Debug("parsed dicom", zap.String("file", in), zap.String("transfer_syntax", info.TransferSyntax),
		zap.Uint16("rows", info.Rows), zap.Uint16("columns", info.Columns),
		zap.Uint16("bits_stored", info.BitsStored), zap.Uint16("samples", info.SamplesPerPixel))

	if _, ok := ds.Get(tag.PixelData); !ok {
		return info, fmt.Errorf("%s: no pixel data", in)
	}
	if info.BitsStored > 8 {
		return info, fmt.Errorf("%s: %w (BitsStored=%d)", in, baseline.ErrBitDepth, info.BitsStored)
	}

	if sameSyntax(sourceTS, transfer.JPEGBaseline8Bit) {
		t.logger.Info("already JPEG Baseline, copying", zap.String("file", in))
		if err := writer.WriteFile(out, ds, writer.WithTransferSyntax(sourceTS)); err != nil {
			return info, fmt.Errorf("write %s: %w", out, err)
		}
		return info, nil
	}

	newDS, err := t.transcode(ds, sourceTS)
	if err != nil {
		return info, fmt.Errorf("transcode %s: %w", in, err)
	}
	if err := writer.WriteFile(out, newDS, writer.WithTransferSyntax(transfer.JPEGBaseline8Bit)); err != nil {
		return info, fmt.Errorf("write %s: %w", out, err)
	}
	t.logger.Info("transcoded", zap.String("in", in), zap.String("out", out), zap.Int("quality", t.quality))
	return info, nil
}

func (t *Transcoder) transcode(ds *dataset.Dataset, sourceTS *transfer.Syntax) (*dataset.Dataset, error) {
	tr := codec.NewTranscoder(sourceTS, transfer.JPEGBaseline8Bit,
		codec.WithCodecRegistry(codec.GetGlobalRegistry()),
		codec.WithOutputParameters(baseline.NewBaselineParameters().WithQuality(t.quality)),
	)
	return tr.Transcode(ds)
}

func describe(ds *dataset.Dataset, ts *transfer.Syntax) *Info {
	info := &Info{
		Rows:            ds.TryGetUInt16(tag.Rows, 0),
		Columns:         ds.TryGetUInt16(tag.Columns, 0),
		BitsStored:      ds.TryGetUInt16(tag.BitsStored, 0),
		SamplesPerPixel: ds.TryGetUInt16(tag.SamplesPerPixel, 0),
	}
	if pi, ok := ds.GetString(tag.PhotometricInterpretation); ok {
		info.Photometric = strings.TrimSpace(pi)
	}
	if ts != nil {
		info.TransferSyntax = ts.UID().UID()
	}
	return info
}

func sameSyntax(a, b *transfer.Syntax) bool {
	return a != nil && b != nil && a.UID().UID() == b.UID().UID()
}
