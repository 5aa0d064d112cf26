package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cocosip/go-jpegasm"
	"github.com/cocosip/go-jpegasm/internal/hasher"
)

// infoReport is the --json output of info
type infoReport struct {
	File string `json:"file"`
	Size int    `json:"size"`
	Hash string `json:"hash"`
	jpegasm.Config
}

func newInfoCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info <input.jpg>",
		Short: "Print the frame header of a JPEG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInfo(cmd, args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) runInfo(cmd *cobra.Command, input string, asJSON bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	cfg, err := jpegasm.DecodeConfig(data)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	report := infoReport{
		File:   input,
		Size:   len(data),
		Hash:   hasher.ContentHash(data, hasher.DefaultLen),
		Config: cfg,
	}
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "File:        %s (%d bytes, %s)\n", report.File, report.Size, report.Hash)
	fmt.Fprintf(out, "Dimensions:  %dx%d\n", cfg.Width, cfg.Height)
	fmt.Fprintf(out, "Process:     %s, %d-bit\n", cfg.Process, cfg.Precision)
	fmt.Fprintf(out, "Color space: %s\n", cfg.ColorSpace)
	var comps []string
	for _, c := range cfg.Components {
		comps = append(comps, fmt.Sprintf("%d:%dx%d", c.ID, c.H, c.V))
	}
	fmt.Fprintf(out, "Components:  %s\n", strings.Join(comps, " "))
	if sub, ok := cfg.Subsampling(); ok {
		fmt.Fprintf(out, "Subsampling: %s\n", sub)
	}
	if cfg.RestartInterval > 0 {
		fmt.Fprintf(out, "Restart:     every %d MCUs\n", cfg.RestartInterval)
	}
	fmt.Fprintf(out, "Decodable:   %t\n", cfg.Supported)
	return nil
}
