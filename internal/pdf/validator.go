package pdf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spherical/pdfproc/internal/domain"
)

// MaxDPI is the highest render resolution accepted.
const MaxDPI = 2400

// Validator checks caller input before any process is spawned.
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSource checks that a path source names a readable file and that a
// buffer source is not empty.
func (v *Validator) ValidateSource(src domain.Source) error {
	if src.IsBuffer() {
		if len(src.Bytes()) == 0 {
			return domain.InvalidArgumentsError("pdf buffer is empty", nil)
		}
		return nil
	}

	path := src.Path()
	if strings.TrimSpace(path) == "" {
		return domain.InvalidArgumentsError("file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.InvalidArgumentsError(fmt.Sprintf("file does not exist: %s", path), err)
		}
		return domain.InvalidArgumentsError(fmt.Sprintf("cannot access file: %s", path), err)
	}
	if info.IsDir() {
		return domain.InvalidArgumentsError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}
	return nil
}

// ValidateRange rejects bounds below 1 and ranges that end before they start.
func (v *Validator) ValidateRange(r domain.PageRange) error {
	if (r.HasFirst() && r.First < 1) || (r.HasLast() && r.Last < 1) {
		return domain.InvalidArgumentsError(fmt.Sprintf("page numbers start at 1, got range %s", r), nil)
	}
	if r.Bounded() && r.Last < r.First {
		return domain.InvalidArgumentsError(fmt.Sprintf("last page %d is before first page %d", r.Last, r.First), nil)
	}
	return nil
}

// ValidateRangeWithin checks the set bounds of r against the page count of
// the document.
func (v *Validator) ValidateRangeWithin(r domain.PageRange, pageCount int) error {
	for _, p := range []struct {
		set  bool
		page int
	}{{r.HasFirst(), r.First}, {r.HasLast(), r.Last}} {
		if p.set && p.page > pageCount {
			return domain.NewError(domain.ErrorTypePageOutOfRange,
				fmt.Sprintf("page %d is beyond the last page %d", p.page, pageCount), nil)
		}
	}
	return nil
}

// ValidateInvocation checks per-call process settings.
func (v *Validator) ValidateInvocation(inv domain.Invocation) error {
	if inv.Timeout < 0 {
		return domain.InvalidArgumentsError(fmt.Sprintf("timeout must not be negative, got %s", inv.Timeout), nil)
	}
	return nil
}

// ValidateInfo validates metadata options.
func (v *Validator) ValidateInfo(opts domain.InfoOptions) error {
	if err := v.ValidateInvocation(opts.Invocation); err != nil {
		return err
	}
	return v.ValidateRange(opts.Range)
}

// ValidateText validates text extraction options.
func (v *Validator) ValidateText(opts domain.TextOptions) error {
	if err := v.ValidateInvocation(opts.Invocation); err != nil {
		return err
	}
	if err := v.ValidateRange(opts.Range); err != nil {
		return err
	}
	switch opts.Encoding {
	case "", domain.EncodingUTF8, domain.EncodingLatin1:
	default:
		return domain.InvalidArgumentsError(fmt.Sprintf("unsupported text encoding %q", opts.Encoding), nil)
	}
	if opts.Layout && opts.Raw {
		return domain.InvalidArgumentsError("layout and raw modes are mutually exclusive", nil)
	}
	return nil
}

// ValidateWords validates bounding-box options.
func (v *Validator) ValidateWords(opts domain.WordsOptions) error {
	if err := v.ValidateInvocation(opts.Invocation); err != nil {
		return err
	}
	return v.ValidateRange(opts.Range)
}

// ValidateRender validates render options after defaults have been applied.
func (v *Validator) ValidateRender(opts domain.RenderOptions) error {
	if err := v.ValidateInvocation(opts.Invocation); err != nil {
		return err
	}
	if err := v.ValidateRange(opts.Range); err != nil {
		return err
	}
	if opts.DPI < 1 || opts.DPI > MaxDPI {
		return domain.InvalidArgumentsError(fmt.Sprintf("dpi must be between 1 and %d, got %d", MaxDPI, opts.DPI), nil)
	}

	switch opts.Format {
	case domain.FormatPNG, domain.FormatTIFF:
	case domain.FormatJPEG:
		if opts.Transparent {
			return domain.InvalidArgumentsError("transparent background requires png or tiff output", nil)
		}
		if opts.Color == domain.ColorMonochrome {
			return domain.InvalidArgumentsError("monochrome output requires png or tiff output", nil)
		}
	default:
		return domain.InvalidArgumentsError(fmt.Sprintf("unsupported output format %q", opts.Format), nil)
	}

	switch opts.Color {
	case domain.ColorFull, domain.ColorMonochrome, domain.ColorGrayscale:
	default:
		return domain.InvalidArgumentsError(fmt.Sprintf("unsupported color mode %q", opts.Color), nil)
	}

	switch opts.Antialias {
	case "", domain.AntialiasDefault, domain.AntialiasNone, domain.AntialiasGray, domain.AntialiasSubpixel,
		domain.AntialiasFast, domain.AntialiasGood, domain.AntialiasBest:
	default:
		return domain.InvalidArgumentsError(fmt.Sprintf("unsupported antialias mode %q", opts.Antialias), nil)
	}

	if s := opts.ScaleTo; s != nil {
		if !validScale(s.X) || !validScale(s.Y) || (s.X == domain.KeepAspect && s.Y == domain.KeepAspect) {
			return domain.InvalidArgumentsError(fmt.Sprintf("invalid scale %dx%d", s.X, s.Y), nil)
		}
	}
	if c := opts.Crop; c != nil {
		if c.X < 0 || c.Y < 0 || c.Width < 1 || c.Height < 1 {
			return domain.InvalidArgumentsError(fmt.Sprintf("invalid crop area %+v", *c), nil)
		}
	}
	return nil
}

func validScale(n int) bool {
	return n == domain.KeepAspect || n > 0
}

// ValidatePages checks explicit page numbers against a known page count.
func (v *Validator) ValidatePages(pages []int, pageCount int) error {
	if len(pages) == 0 {
		return domain.InvalidArgumentsError("no pages requested", nil)
	}
	for _, p := range pages {
		if p < 1 {
			return domain.InvalidArgumentsError(fmt.Sprintf("page numbers start at 1, got %d", p), nil)
		}
		if pageCount > 0 && p > pageCount {
			return domain.NewError(domain.ErrorTypePageOutOfRange,
				fmt.Sprintf("page %d is beyond the last page %d", p, pageCount), nil)
		}
	}
	return nil
}

func effectiveTimeout(inv domain.Invocation, fallback time.Duration) time.Duration {
	if inv.Timeout > 0 {
		return inv.Timeout
	}
	return fallback
}
