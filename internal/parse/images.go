package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/spherical/pdfproc/internal/domain"
	"github.com/spherical/pdfproc/internal/imaging"
)

// Images loads the pages pdftocairo wrote into dir using prefix, which is the
// bare file name prefix (e.g. "page"). Page numbers in file names are
// zero-padded to the width of the document's page count.
//
// The pages found must be contiguous from the first requested page. When the
// range has a last page, exactly the pages First..Last must be present.
func Images(dir, prefix string, format domain.OutputFormat, r domain.PageRange) ([]domain.RenderedImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, domain.IOError("read render directory", err)
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)` + regexp.QuoteMeta(format.Extension()) + `$`)
	files := map[int]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		if prev, dup := files[n]; dup {
			return nil, domain.MalformedOutputError(fmt.Sprintf("page %d written twice (%s, %s)", n, prev, e.Name()), nil)
		}
		files[n] = e.Name()
	}

	if len(files) == 0 {
		return nil, domain.MalformedOutputError(fmt.Sprintf("no %s pages were written", format), nil)
	}

	pages := make([]int, 0, len(files))
	for n := range files {
		pages = append(pages, n)
	}
	sort.Ints(pages)

	start := r.Start()
	for i, n := range pages {
		if n != start+i {
			return nil, domain.MalformedOutputError(fmt.Sprintf("expected page %d, found page %d", start+i, n), nil)
		}
	}
	if r.HasLast() && len(pages) != r.Count() {
		return nil, domain.MalformedOutputError(fmt.Sprintf("expected %d pages for range %s, found %d", r.Count(), r, len(pages)), nil)
	}

	images := make([]domain.RenderedImage, 0, len(pages))
	for _, n := range pages {
		data, err := os.ReadFile(filepath.Join(dir, files[n]))
		if err != nil {
			return nil, domain.IOError(fmt.Sprintf("read page %d", n), err)
		}
		if got, ok := imaging.Sniff(data); !ok || got != format {
			return nil, domain.MalformedOutputError(fmt.Sprintf("page %d is not a %s image", n, format), nil)
		}
		images = append(images, domain.RenderedImage{Page: n, Format: format, Data: data})
	}
	return images, nil
}
