package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spherical/pdfproc/pkg/pdfproc"
)

var (
	infoOutput   string
	infoISODates bool
)

var infoCmd = &cobra.Command{
	Use:   "info <file.pdf|->",
	Short: "Print document metadata as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().StringVarP(&infoOutput, "output", "o", "", "write to file instead of stdout")
	infoCmd.Flags().BoolVar(&infoISODates, "iso-dates", false, "print dates in ISO-8601 format")
	rootCmd.AddCommand(infoCmd)
}

// infoView is the YAML shape of DocumentInfo.
type infoView struct {
	Title        *string           `yaml:"title,omitempty"`
	Author       *string           `yaml:"author,omitempty"`
	Subject      *string           `yaml:"subject,omitempty"`
	Keywords     *string           `yaml:"keywords,omitempty"`
	Creator      *string           `yaml:"creator,omitempty"`
	Producer     *string           `yaml:"producer,omitempty"`
	CreationDate *string           `yaml:"creation_date,omitempty"`
	ModDate      *string           `yaml:"mod_date,omitempty"`
	PDFVersion   *string           `yaml:"pdf_version,omitempty"`
	PageSize     *string           `yaml:"page_size,omitempty"`
	Pages        *int              `yaml:"pages,omitempty"`
	Tagged       *bool             `yaml:"tagged,omitempty"`
	Optimized    *bool             `yaml:"optimized,omitempty"`
	Encrypted    bool              `yaml:"encrypted"`
	Encryption   map[string]string `yaml:"encryption,omitempty"`
	Extras       map[string]string `yaml:"extras,omitempty"`
}

func newInfoView(info *pdfproc.DocumentInfo) infoView {
	v := infoView{
		Title:        info.Title,
		Author:       info.Author,
		Subject:      info.Subject,
		Keywords:     info.Keywords,
		Creator:      info.Creator,
		Producer:     info.Producer,
		CreationDate: info.CreationDate,
		ModDate:      info.ModDate,
		PDFVersion:   info.PDFVersion,
		PageSize:     info.PageSize,
		Pages:        info.Pages,
		Tagged:       info.Tagged,
		Optimized:    info.Optimized,
		Encrypted:    info.Encrypted,
		Extras:       info.Extras,
	}
	if info.Encryption != nil {
		v.Encryption = info.Encryption.Options
	}
	return v
}

func runInfo(cmd *cobra.Command, args []string) error {
	src, err := sourceFor(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	info, err := client.ReadInfo(cmd.Context(), src, pdfproc.InfoOptions{
		Invocation: invocationFlag(),
		Range:      rangeFlag(cmd),
		Password:   passwordFlag(),
		ISODates:   infoISODates,
	})
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(newInfoView(info))
	if err != nil {
		return fmt.Errorf("marshal info: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), infoOutput, out)
}
