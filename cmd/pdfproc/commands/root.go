// Package commands implements the pdfproc command-line interface.
package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spherical/pdfproc/cmd/pdfproc/ui"
	"github.com/spherical/pdfproc/internal/observability"
	"github.com/spherical/pdfproc/pkg/pdfproc"
)

var (
	cfgFile       string
	verbose       bool
	quiet         bool
	noColor       bool
	userPassword  string
	ownerPassword string
	firstPage     int
	lastPage      int
	timeout       time.Duration

	client *pdfproc.Client
)

var rootCmd = &cobra.Command{
	Use:   "pdfproc",
	Short: "Extract text, metadata and page images from PDF documents",
	Long: `pdfproc drives the poppler command-line tools (pdfinfo, pdftotext and
pdftocairo) to read document metadata, extract text and word boxes, render
pages to images and, when built with the ocr tag, recognise scanned pages.

Configuration is read from --config, then PDFPROC_* environment variables
(a .env file in the working directory is loaded first).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load() // a missing .env is fine

		cfg, err := pdfproc.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Observability.LogLevel = "debug"
			cfg.Observability.LogStderr = true
		}

		ui.InitUI(noColor, quiet)

		logger := observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      cfg.Observability.LogFormat,
			Output:      os.Stderr,
			ServiceName: "pdfproc",
		})

		client, err = pdfproc.New(cfg, pdfproc.WithLogger(logger.Zerolog()))
		return err
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file path")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every tool invocation")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.StringVar(&userPassword, "upw", "", "user password for encrypted documents")
	flags.StringVar(&ownerPassword, "opw", "", "owner password for encrypted documents")
	flags.IntVarP(&firstPage, "first", "f", 0, "first page to process")
	flags.IntVarP(&lastPage, "last", "l", 0, "last page to process")
	flags.DurationVar(&timeout, "timeout", 0, "per-invocation timeout, e.g. 30s (default from config)")
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ui.Error("%v", err)
	}
	return err
}

// ExitCode maps an error to the process exit status: 2 for usage problems,
// 3 for documents that need a password and 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pdfproc.ErrInvalidArguments), pdfproc.ErrorTypeOf(err) == pdfproc.ErrorTypeConfig:
		return 2
	case errors.Is(err, pdfproc.ErrPasswordRequired), errors.Is(err, pdfproc.ErrIncorrectPassword):
		return 3
	default:
		return 1
	}
}
