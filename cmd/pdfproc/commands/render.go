package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spherical/pdfproc/cmd/pdfproc/ui"
	"github.com/spherical/pdfproc/internal/imaging"
	"github.com/spherical/pdfproc/pkg/pdfproc"
)

var (
	renderOutDir      string
	renderFormat      string
	renderDPI         int
	renderMaxSize     int
	renderGray        bool
	renderMono        bool
	renderTransparent bool
	renderCropBox     bool
	renderPages       string
)

var renderCmd = &cobra.Command{
	Use:   "render <file.pdf|->",
	Short: "Render pages to image files",
	Long: `Render pages with pdftocairo and write one file per page, named
<input>-<page>.<ext> with the page number zero-padded.

--pages renders an explicit list such as "1,3,5-7" with one pdftocairo process
per page. --max-size downscales every page so its longest side fits,
re-encoding as PNG.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderOutDir, "out-dir", "d", ".", "directory to write images to")
	f.StringVar(&renderFormat, "format", "", "png, jpeg or tiff (default from config)")
	f.IntVarP(&renderDPI, "dpi", "r", 0, "resolution in DPI (default from config)")
	f.IntVar(&renderMaxSize, "max-size", 0, "downscale so the longest side is at most this many pixels")
	f.BoolVar(&renderGray, "gray", false, "render in grayscale")
	f.BoolVar(&renderMono, "mono", false, "render in monochrome")
	f.BoolVar(&renderTransparent, "transparent", false, "use a transparent page background (png and tiff)")
	f.BoolVar(&renderCropBox, "cropbox", false, "use the crop box instead of the media box")
	f.StringVar(&renderPages, "pages", "", "render only these pages, e.g. 1,3,5-7")
	rootCmd.AddCommand(renderCmd)
}

func renderOptions(cmd *cobra.Command) (pdfproc.RenderOptions, error) {
	opts := pdfproc.RenderOptions{
		Invocation:  invocationFlag(),
		Range:       rangeFlag(cmd),
		DPI:         renderDPI,
		Password:    passwordFlag(),
		CropBox:     renderCropBox,
		Transparent: renderTransparent,
	}
	if renderFormat != "" {
		format, err := pdfproc.ParseFormat(renderFormat)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}
	switch {
	case renderGray && renderMono:
		return opts, fmt.Errorf("%w: --gray and --mono are exclusive", pdfproc.ErrInvalidArguments)
	case renderGray:
		opts.Color = pdfproc.ColorGrayscale
	case renderMono:
		opts.Color = pdfproc.ColorMonochrome
	}
	return opts, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	opts, err := renderOptions(cmd)
	if err != nil {
		return err
	}
	if renderMaxSize < 0 {
		return fmt.Errorf("%w: --max-size must not be negative", pdfproc.ErrInvalidArguments)
	}

	var pages []int
	if renderPages != "" {
		if pages, err = parsePageList(renderPages); err != nil {
			return err
		}
	}

	src, err := sourceFor(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	images, err := ui.Spin("Rendering pages...", func() ([]pdfproc.RenderedImage, error) {
		if pages != nil {
			return client.RenderPages(cmd.Context(), src, pages, opts, nil)
		}
		return client.Render(cmd.Context(), src, opts)
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(renderOutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	paths, err := writeImages(renderOutDir, baseName(args[0]), images, renderMaxSize)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	ui.Success("Rendered %d pages to %s", len(paths), renderOutDir)
	return nil
}

// writeImages writes each page to dir, downscaling first when maxSide > 0,
// and returns the paths in the order of images.
func writeImages(dir, base string, images []pdfproc.RenderedImage, maxSide int) ([]string, error) {
	maxPage := 0
	for _, img := range images {
		maxPage = max(maxPage, img.Page)
	}

	paths := make([]string, 0, len(images))
	for _, img := range images {
		if maxSide > 0 {
			shrunk, err := imaging.Shrink(img, maxSide)
			if err != nil {
				return paths, err
			}
			img = shrunk
		}

		path := filepath.Join(dir, imageName(base, img, maxPage))
		if err := os.WriteFile(path, img.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write page %d: %w", img.Page, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
