package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cocosip/go-jpegasm"
	"github.com/cocosip/go-jpegasm/internal/verify"
)

type verifyFlags struct {
	quality     int
	subsampling string
	workers     int
	minPSNR     float64
}

func newVerifyCmd(a *app) *cobra.Command {
	f := &verifyFlags{}
	cmd := &cobra.Command{
		Use:   "verify <dir>",
		Short: "Round-trip every image in a directory and check quality",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVerify(cmd, args[0], f)
		},
	}
	cmd.Flags().IntVarP(&f.quality, "quality", "q", jpegasm.DefaultQuality, "quality 1-100")
	cmd.Flags().StringVar(&f.subsampling, "subsampling", "420", "chroma subsampling: 420, 422 or 444")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "concurrent files (0 = number of CPUs)")
	cmd.Flags().Float64Var(&f.minPSNR, "min-psnr", verify.DefaultMinPSNR, "minimum PSNR in dB")
	return cmd
}

func (a *app) runVerify(cmd *cobra.Command, dir string, f *verifyFlags) error {
	sub, err := jpegasm.ParseSubsampling(f.subsampling)
	if err != nil {
		return err
	}
	v := verify.New(verify.Config{
		Options: &jpegasm.Options{Quality: f.quality, Subsampling: sub},
		Workers: f.workers,
		MinPSNR: f.minPSNR,
	}, a.logger)

	report, err := v.Run(cmd.Context(), dir)
	if report == nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range report.Results {
		if r.Err != nil {
			fmt.Fprintf(out, "  FAIL %s: %v\n", r.Source.RelPath, r.Err)
			continue
		}
		psnr := "exact"
		if !math.IsInf(r.PSNR, 1) {
			psnr = fmt.Sprintf("%.2f dB", r.PSNR)
		}
		fmt.Fprintf(out, "  ok   %s: %dx%d, %d bytes, %s, %s\n",
			r.Source.RelPath, r.Width, r.Height, r.Encoded, psnr, r.Hash)
	}
	fmt.Fprintf(out, "%d passed, %d failed\n", report.Passed, report.Failed)

	if err != nil {
		a.logger.Debug("verify finished with errors", zap.Error(err))
		return fmt.Errorf("verify: %d of %d images failed", report.Failed, len(report.Results))
	}
	return nil
}
