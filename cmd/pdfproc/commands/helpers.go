package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spherical/pdfproc/pkg/pdfproc"
)

// sourceFor reads "-" from stdin and treats anything else as a path.
func sourceFor(arg string, stdin io.Reader) (pdfproc.Source, error) {
	if arg != "-" {
		return pdfproc.SourceFromPath(arg), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return pdfproc.Source{}, fmt.Errorf("read stdin: %w", err)
	}
	return pdfproc.SourceFromBytes(data), nil
}

func passwordFlag() *pdfproc.Password {
	switch {
	case ownerPassword != "":
		return pdfproc.OwnerPassword(ownerPassword)
	case userPassword != "":
		return pdfproc.UserPassword(userPassword)
	}
	return nil
}

// rangeFlag builds the page range from --first and --last. Only flags given
// on the command line are set, so an explicit --first 0 is rejected rather
// than read as "from the start".
func rangeFlag(cmd *cobra.Command) pdfproc.PageRange {
	first, last := cmd.Flags().Changed("first"), cmd.Flags().Changed("last")
	switch {
	case first && last:
		return pdfproc.Pages(firstPage, lastPage)
	case first:
		return pdfproc.FromPage(firstPage)
	case last:
		return pdfproc.ToPage(lastPage)
	}
	return pdfproc.PageRange{}
}

func invocationFlag() pdfproc.Invocation {
	return pdfproc.Invocation{Timeout: timeout}
}

// maxPageList bounds how many pages a --pages list may expand to.
const maxPageList = 10000

// parsePageList parses "1,3,5-7" into distinct pages in the order given.
// Errors wrap pdfproc.ErrInvalidArguments.
func parsePageList(s string) ([]int, error) {
	var pages []int
	seen := make(map[int]bool)
	add := func(n int) {
		if !seen[n] {
			seen[n] = true
			pages = append(pages, n)
		}
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || first < 1 {
			return nil, fmt.Errorf("%w: invalid page %q", pdfproc.ErrInvalidArguments, part)
		}
		if !isRange {
			add(first)
			continue
		}
		last, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil || last < first {
			return nil, fmt.Errorf("%w: invalid page range %q", pdfproc.ErrInvalidArguments, part)
		}
		if last-first >= maxPageList-len(pages) {
			return nil, fmt.Errorf("%w: page list %q expands to more than %d pages", pdfproc.ErrInvalidArguments, s, maxPageList)
		}
		for n := first; n <= last; n++ {
			add(n)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages in %q", pdfproc.ErrInvalidArguments, s)
	}
	return pages, nil
}

// imageName names a rendered page file, e.g. report-003.png for page 3 of 120.
func imageName(base string, img pdfproc.RenderedImage, maxPage int) string {
	width := len(strconv.Itoa(maxPage))
	return fmt.Sprintf("%s-%0*d%s", base, width, img.Page, img.Format.Extension())
}

// baseName strips the directory and .pdf extension from a path. Stdin input
// is named "page".
func baseName(arg string) string {
	if arg == "-" {
		return "page"
	}
	name := filepath.Base(arg)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// writeOutput writes data to path, or to stdout when path is "" or "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
