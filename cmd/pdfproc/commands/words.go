package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spherical/pdfproc/cmd/pdfproc/ui"
	"github.com/spherical/pdfproc/pkg/pdfproc"
)

var wordsOutput string

var wordsCmd = &cobra.Command{
	Use:   "words <file.pdf|->",
	Short: "Print every word with its bounding box as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runWords,
}

func init() {
	wordsCmd.Flags().StringVarP(&wordsOutput, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(wordsCmd)
}

type wordView struct {
	Text string     `yaml:"text"`
	Box  [4]float64 `yaml:"box,flow"`
}

type pageWordsView struct {
	Page   int        `yaml:"page"`
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Words  []wordView `yaml:"words"`
}

func newPageWordsViews(pages []pdfproc.PageWords) []pageWordsView {
	views := make([]pageWordsView, 0, len(pages))
	for _, p := range pages {
		v := pageWordsView{Page: p.Page, Width: p.Width, Height: p.Height, Words: make([]wordView, 0, len(p.Words))}
		for _, w := range p.Words {
			v.Words = append(v.Words, wordView{Text: w.Text, Box: [4]float64{w.XMin, w.YMin, w.XMax, w.YMax}})
		}
		views = append(views, v)
	}
	return views
}

func runWords(cmd *cobra.Command, args []string) error {
	src, err := sourceFor(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	pages, err := ui.Spin("Extracting words...", func() ([]pdfproc.PageWords, error) {
		return client.ExtractWords(cmd.Context(), src, pdfproc.WordsOptions{
			Invocation: invocationFlag(),
			Range:      rangeFlag(cmd),
			Password:   passwordFlag(),
		})
	})
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(newPageWordsViews(pages))
	if err != nil {
		return fmt.Errorf("marshal words: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), wordsOutput, out)
}
