// Package cli implements the jpegasm command tree.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

// app carries state shared by every command of one invocation
type app struct {
	verbose bool
	logger  *zap.Logger
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "jpegasm",
		Short: "Baseline JPEG encoder and decoder",
		Long: `jpegasm encodes packed RGB pixels and common image formats to baseline
JFIF, decodes JPEG streams back to pixels, and reports failures with the
libjpeg status codes.

It also round-trips whole directories to check quality and re-encodes
DICOM pixel data as JPEG Baseline.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"jpegasm %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))

	rootCmd.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newInfoCmd(a),
		newVerifyCmd(a),
		newDicomCmd(a),
		newStatusCmd(),
	)
	return rootCmd
}

// Execute runs the command line
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) setup(*cobra.Command, []string) error {
	logger, err := newLogger(a.verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger
	return nil
}

// newLogger returns a development logger with --verbose and a console
// logger at warn level otherwise
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}
