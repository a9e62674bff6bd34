package commands

import (
	"github.com/spf13/cobra"

	"github.com/spherical/pdfproc/cmd/pdfproc/ui"
	"github.com/spherical/pdfproc/pkg/pdfproc"
)

var (
	ocrOutput string
	ocrDPI    int
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <file.pdf|->",
	Short: "Render pages and recognise their text with Tesseract",
	Long: `Render pages and run Tesseract over them. Languages come from the
ocr.languages config key or PDFPROC_OCR_LANGUAGES, e.g. eng+deu.

Only available in binaries built with -tags ocr.`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	ocrCmd.Flags().StringVarP(&ocrOutput, "output", "o", "", "write to file instead of stdout")
	ocrCmd.Flags().IntVarP(&ocrDPI, "dpi", "r", 300, "render resolution for recognition")
	rootCmd.AddCommand(ocrCmd)
}

func runOCR(cmd *cobra.Command, args []string) error {
	src, err := sourceFor(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	text, err := ui.Spin("Recognising pages...", func() (*pdfproc.ExtractedText, error) {
		return client.Recognize(cmd.Context(), src, pdfproc.RenderOptions{
			Invocation: invocationFlag(),
			Range:      rangeFlag(cmd),
			DPI:        ocrDPI,
			Password:   passwordFlag(),
		})
	})
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), ocrOutput, []byte(formatText(text, true)))
}
