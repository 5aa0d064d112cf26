package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cocosip/go-jpegasm"
	"github.com/cocosip/go-jpegasm/internal/imageio"
)

func newDecodeCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "decode <input.jpg>",
		Short: "Decode a JPEG file to PNG or packed RGB",
		Long:  "Decode writes PNG, or raw packed RGB when the output name ends in .rgb.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDecode(cmd, args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with .png)")
	return cmd
}

func (a *app) runDecode(cmd *cobra.Command, input, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	img, err := jpegasm.DecodeJPEG(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", input, err)
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
	}
	if err := imageio.Save(output, img); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	a.logger.Debug("decoded", zap.String("in", input), zap.String("out", output),
		zap.Int("width", img.Width), zap.Int("height", img.Height))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d\n", output, img.Width, img.Height)
	return nil
}
