package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cocosip/go-jpegasm/internal/dicomio"
	"github.com/cocosip/go-jpegasm/jpeg/baseline"
)

func newDicomCmd(a *app) *cobra.Command {
	var (
		output  string
		quality int
	)
	cmd := &cobra.Command{
		Use:   "dicom <input.dcm>",
		Short: "Re-encode DICOM pixel data as JPEG Baseline",
		Long: `Dicom transcodes an 8-bit DICOM file to the JPEG Baseline (Process 1)
transfer syntax and writes a new Part 10 file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output
			if out == "" {
				in := args[0]
				out = strings.TrimSuffix(in, filepath.Ext(in)) + "_jpeg.dcm"
			}
			info, err := dicomio.New(quality, a.logger).TranscodeFile(args[0], out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d, %d sample(s), from %s\n",
				out, info.Columns, info.Rows, info.SamplesPerPixel, info.TransferSyntax)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with _jpeg.dcm)")
	cmd.Flags().IntVarP(&quality, "quality", "q", baseline.DefaultQuality, "quality 1-100")
	return cmd
}
