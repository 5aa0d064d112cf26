package cli

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cocosip/go-jpegasm"
	"github.com/cocosip/go-jpegasm/internal/hasher"
	"github.com/cocosip/go-jpegasm/internal/imageio"
)

type encodeFlags struct {
	output      string
	quality     int
	raw         string
	subsampling string
	restart     int
	optimize    bool
	resize      string
	comment     string
}

func newEncodeCmd(a *app) *cobra.Command {
	f := &encodeFlags{}
	cmd := &cobra.Command{
		Use:   "encode <input>",
		Short: "Encode an image or raw RGB file to JPEG",
		Long: `Encode reads png, gif, bmp, tiff, webp or jpeg input, or packed RGB
bytes with --raw WIDTHxHEIGHT, and writes a baseline JFIF file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEncode(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: input name with .jpg)")
	cmd.Flags().IntVarP(&f.quality, "quality", "q", jpegasm.DefaultQuality, "quality 1-100")
	cmd.Flags().StringVar(&f.raw, "raw", "", "treat input as packed RGB of size WIDTHxHEIGHT")
	cmd.Flags().StringVar(&f.subsampling, "subsampling", "420", "chroma subsampling: 420, 422 or 444")
	cmd.Flags().IntVar(&f.restart, "restart", 0, "restart interval in MCUs")
	cmd.Flags().BoolVar(&f.optimize, "optimize", false, "compute optimal Huffman tables")
	cmd.Flags().StringVar(&f.resize, "resize", "", "resize to WIDTHxHEIGHT before encoding (0 keeps aspect)")
	cmd.Flags().StringVar(&f.comment, "comment", "", "store a COM segment")
	return cmd
}

func (a *app) runEncode(cmd *cobra.Command, input string, f *encodeFlags) error {
	sub, err := jpegasm.ParseSubsampling(f.subsampling)
	if err != nil {
		return err
	}
	opts := &jpegasm.Options{
		Quality:         f.quality,
		Subsampling:     sub,
		RestartInterval: f.restart,
		OptimizeCoding:  f.optimize,
		Comment:         f.comment,
	}

	img, err := loadSource(input, f.raw)
	if err != nil {
		return err
	}
	if f.resize != "" {
		w, h, err := imageio.ParseSize(f.resize)
		if err != nil {
			return err
		}
		img = imageio.Resize(img, w, h)
	}

	data, err := jpegasm.EncodeImage(img, opts)
	if err != nil {
		return fmt.Errorf("encode %s: %w", input, err)
	}

	out := f.output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".jpg"
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	b := img.Bounds()
	hash := hasher.ContentHash(data, hasher.DefaultLen)
	a.logger.Debug("encoded", zap.String("in", input), zap.String("out", out),
		zap.Int("quality", f.quality), zap.Stringer("subsampling", sub), zap.Int("bytes", len(data)))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d, %d bytes, %s\n", out, b.Dx(), b.Dy(), len(data), hash)
	return nil
}

// loadSource reads a picture file, or packed RGB when rawSize is set
func loadSource(path, rawSize string) (image.Image, error) {
	if rawSize == "" {
		img, _, err := imageio.Load(path)
		return img, err
	}
	w, h, err := imageio.ParseSize(rawSize)
	if err != nil {
		return nil, err
	}
	pix, err := imageio.ReadRaw(path, w, h)
	if err != nil {
		return nil, err
	}
	return (&jpegasm.Image{Pix: pix, Width: w, Height: h}).NRGBA(), nil
}
