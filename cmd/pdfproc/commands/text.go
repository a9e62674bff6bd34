package commands

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/spherical/pdfproc/cmd/pdfproc/ui"
	"github.com/spherical/pdfproc/pkg/pdfproc"
)

var (
	textOutput    string
	textPages     string
	textLayout    bool
	textRaw       bool
	textSplit     bool
	textLatin1    bool
	textNormalize bool
)

var textCmd = &cobra.Command{
	Use:   "text <file.pdf|->",
	Short: "Extract the document text",
	Long: `Extract the document text with pdftotext.

--pages takes a list such as 1,3,5-7 and extracts those pages concurrently,
one pdftotext process per page, printing them in the order listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runText,
}

func init() {
	f := textCmd.Flags()
	f.StringVarP(&textOutput, "output", "o", "", "write to file instead of stdout")
	f.StringVarP(&textPages, "pages", "p", "", "page list to extract concurrently, e.g. 1,3,5-7")
	f.BoolVar(&textLayout, "layout", false, "keep the physical layout")
	f.BoolVar(&textRaw, "raw", false, "keep content stream order")
	f.BoolVar(&textSplit, "split", false, "print a header before every page")
	f.BoolVar(&textLatin1, "latin1", false, "ask pdftotext for Latin1 output")
	f.BoolVar(&textNormalize, "nfc", false, "normalize the text to Unicode NFC")
	rootCmd.AddCommand(textCmd)
}

func runText(cmd *cobra.Command, args []string) error {
	src, err := sourceFor(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	opts := pdfproc.TextOptions{
		Invocation: invocationFlag(),
		Range:      rangeFlag(cmd),
		Password:   passwordFlag(),
		SplitPages: textSplit,
		Layout:     textLayout,
		Raw:        textRaw,
		Normalize:  textNormalize,
	}
	if textLatin1 {
		opts.Encoding = pdfproc.EncodingLatin1
	}

	var text *pdfproc.ExtractedText
	if textPages != "" {
		pages, err := parsePageList(textPages)
		if err != nil {
			return err
		}
		text, err = extractPages(cmd, src, pages, opts)
		if err != nil {
			return err
		}
	} else {
		text, err = ui.Spin("Extracting text...", func() (*pdfproc.ExtractedText, error) {
			return client.ExtractText(cmd.Context(), src, opts)
		})
		if err != nil {
			return err
		}
	}

	return writeOutput(cmd.OutOrStdout(), textOutput, []byte(formatText(text, textSplit || textPages != "")))
}

// extractPages runs TextPages and drives a progress bar from its events.
func extractPages(cmd *cobra.Command, src pdfproc.Source, pages []int, opts pdfproc.TextOptions) (*pdfproc.ExtractedText, error) {
	bar := ui.NewProgressBar(len(pages), "pages")
	events := make(chan pdfproc.StreamEvent, len(pages)*2+2)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			if ev.Type == pdfproc.EventPageComplete {
				bar.Add(1)
			}
		}
	}()

	text, err := client.TextPages(cmd.Context(), src, pages, opts, events)
	close(events)
	wg.Wait()
	if err != nil {
		return nil, err
	}
	bar.Finish()
	return text, nil
}

func formatText(text *pdfproc.ExtractedText, headers bool) string {
	if !headers {
		return text.String()
	}
	var b strings.Builder
	for _, p := range text.Pages {
		fmt.Fprintf(&b, "==> page %d <==\n", p.Page)
		b.WriteString(p.Text)
		if !strings.HasSuffix(p.Text, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
