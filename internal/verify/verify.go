// Package verify round-trips every picture in a directory through the
// codec and checks the decoded result against the source.
package verify

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cocosip/go-jpegasm"
	"github.com/cocosip/go-jpegasm/internal/hasher"
	"github.com/cocosip/go-jpegasm/internal/imageio"
)

// DefaultMinPSNR is the pass threshold in dB
const DefaultMinPSNR = 30.0

var (
	// ErrNoImages is returned when the directory holds no pictures
	ErrNoImages = errors.New("no images found")
	// ErrLowPSNR marks a round trip below the threshold
	ErrLowPSNR = errors.New("PSNR below threshold")
	// ErrSizeMismatch marks decoded dimensions that differ from the source
	ErrSizeMismatch = errors.New("decoded size differs from source")
)

// Config controls a verification run
type Config struct {
	// Options for the encoder; nil uses jpegasm.DefaultOptions
	Options *jpegasm.Options
	// Workers bounds concurrent files; 0 uses runtime.NumCPU
	Workers int
	// MinPSNR is the pass threshold; 0 uses DefaultMinPSNR
	MinPSNR float64
}

// Result is the outcome for one file
type Result struct {
	Source  Source
	Width   int
	Height  int
	Encoded int
	// PSNR in dB, +Inf for an exact match
	PSNR float64
	// Hash of the encoded stream
	Hash     string
	Duration time.Duration
	Err      error
}

// Report summarises a run
type Report struct {
	Results []Result
	Passed  int
	Failed  int
}

// Verifier runs round trips with a fixed configuration
type Verifier struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a verifier. A nil logger discards output.
func New(cfg Config, logger *zap.Logger) *Verifier {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MinPSNR == 0 {
		cfg.MinPSNR = DefaultMinPSNR
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{cfg: cfg, logger: logger}
}

// Run verifies every picture under dir. The report is returned even when
// files fail; the error combines every per-file failure.
func (v *Verifier) Run(ctx context.Context, dir string) (*Report, error) {
	sources, err := ScanImages(dir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, dir)
	}
	v.logger.Debug("scan complete", zap.String("dir", dir), zap.Int("images", len(sources)),
		zap.Int("workers", v.cfg.Workers))

	results := make([]Result, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, v.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[idx] = Result{Source: s, Err: err}
				return
			}
			results[idx] = v.File(s)
		}(i, src)
	}
	wg.Wait()

	report := &Report{Results: results}
	var errs error
	for _, r := range results {
		if r.Err != nil {
			report.Failed++
			errs = multierr.Append(errs, r.Err)
			continue
		}
		report.Passed++
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, errs
}

// File verifies a single source
func (v *Verifier) File(s Source) Result {
	start := time.Now()
	res := v.roundTrip(Result{Source: s})
	res.Duration = time.Since(start)
	if res.Err != nil {
		v.logger.Warn("verify failed", zap.String("file", s.RelPath), zap.Error(res.Err))
	} else {
		v.logger.Debug("verified", zap.String("file", s.RelPath), zap.Float64("psnr", res.PSNR),
			zap.Int("bytes", res.Encoded), zap.String("hash", res.Hash), zap.Duration("took", res.Duration))
	}
	return res
}

func (v *Verifier) roundTrip(res Result) Result {
	rel := res.Source.RelPath
	img, _, err := imageio.Load(res.Source.AbsPath)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", rel, err)
		return res
	}
	b := img.Bounds()
	res.Width, res.Height = b.Dx(), b.Dy()

	data, err := jpegasm.EncodeImage(img, v.cfg.Options)
	if err != nil {
		res.Err = fmt.Errorf("%s: encode: %w", rel, err)
		return res
	}
	res.Encoded = len(data)
	res.Hash = hasher.ContentHash(data, hasher.DefaultLen)

	decoded, err := jpegasm.DecodeJPEG(data)
	if err != nil {
		res.Err = fmt.Errorf("%s: decode: %w", rel, err)
		return res
	}
	if decoded.Width != res.Width || decoded.Height != res.Height {
		res.Err = fmt.Errorf("%s: %w: %dx%d, want %dx%d", rel, ErrSizeMismatch,
			decoded.Width, decoded.Height, res.Width, res.Height)
		return res
	}

	flat := imaging.Overlay(imaging.New(res.Width, res.Height, color.White), img, image.Pt(0, 0), 1.0)
	res.PSNR = PSNR(flat, decoded)
	if res.PSNR < v.cfg.MinPSNR {
		res.Err = fmt.Errorf("%s: %w (%.2f dB < %.2f dB)", rel, ErrLowPSNR, res.PSNR, v.cfg.MinPSNR)
	}
	return res
}

// PSNR compares the colour channels of ref with a decoded image of the
// same size. Identical pictures give +Inf.
func PSNR(ref *image.NRGBA, got *jpegasm.Image) float64 {
	var sum float64
	for y := 0; y < got.Height; y++ {
		row := ref.Pix[y*ref.Stride:]
		for x := 0; x < got.Width; x++ {
			for c := 0; c < 3; c++ {
				d := float64(row[x*4+c]) - float64(got.Pix[(y*got.Width+x)*3+c])
				sum += d * d
			}
		}
	}
	if sum == 0 {
		return math.Inf(1)
	}
	mse := sum / float64(got.Width*got.Height*3)
	return 10 * math.Log10(255*255/mse)
}
