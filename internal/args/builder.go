// Package args turns typed options into poppler argument vectors.
//
// Builders are pure: they never touch the filesystem. Staging of in-memory
// sources and reservation of output directories lives in Scope.
package args

import (
	"strconv"

	"github.com/spherical/pdfproc/internal/domain"
)

// Default executable names, resolved through PATH.
const (
	DefaultInfoTool   = "pdfinfo"
	DefaultTextTool   = "pdftotext"
	DefaultRenderTool = "pdftocairo"
)

// StdoutTarget tells pdftotext to write to standard output.
const StdoutTarget = "-"

// Tools holds configured executable paths. Empty fields fall back to the defaults.
type Tools struct {
	Info   string `yaml:"pdfinfo"`
	Text   string `yaml:"pdftotext"`
	Render string `yaml:"pdftocairo"`
}

// Invocation is an executable plus its argument vector.
type Invocation struct {
	Executable string
	Args       []string
	Stdin      []byte
}

// Command converts the invocation into a runner command.
func (i Invocation) Command(inv domain.Invocation) domain.Command {
	return domain.Command{
		Path:    i.Executable,
		Args:    i.Args,
		Stdin:   i.Stdin,
		Timeout: inv.Timeout,
	}
}

// Builder builds invocations for the three poppler tools.
type Builder struct {
	tools Tools
}

// NewBuilder creates a builder using the configured tool paths.
func NewBuilder(tools Tools) *Builder {
	return &Builder{tools: tools}
}

func pick(override, configured, fallback string) string {
	if override != "" {
		return override
	}
	if configured != "" {
		return configured
	}
	return fallback
}

// Info builds a pdfinfo invocation.
func (b *Builder) Info(opts domain.InfoOptions, in Input) Invocation {
	var argv []string
	argv = appendRange(argv, opts.Range)
	argv = append(argv, "-enc", string(domain.EncodingUTF8))
	if opts.ISODates {
		argv = append(argv, "-isodates")
	}
	argv = appendPassword(argv, opts.Password)
	argv = append(argv, in.Path)

	return Invocation{
		Executable: pick(opts.Executable, b.tools.Info, DefaultInfoTool),
		Args:       argv,
		Stdin:      in.Stdin,
	}
}

// Text builds a pdftotext invocation writing to stdout.
func (b *Builder) Text(opts domain.TextOptions, in Input) Invocation {
	var argv []string
	argv = appendRange(argv, opts.Range)
	if opts.Layout {
		argv = append(argv, "-layout")
	}
	if opts.Raw {
		argv = append(argv, "-raw")
	}
	enc := opts.Encoding
	if enc == "" {
		enc = domain.EncodingUTF8
	}
	argv = append(argv, "-enc", string(enc))
	argv = appendPassword(argv, opts.Password)
	argv = append(argv, in.Path, StdoutTarget)

	return Invocation{
		Executable: pick(opts.Executable, b.tools.Text, DefaultTextTool),
		Args:       argv,
		Stdin:      in.Stdin,
	}
}

// Words builds a pdftotext -bbox invocation writing XHTML to stdout.
func (b *Builder) Words(opts domain.WordsOptions, in Input) Invocation {
	argv := []string{"-bbox"}
	argv = appendRange(argv, opts.Range)
	argv = append(argv, "-enc", string(domain.EncodingUTF8))
	argv = appendPassword(argv, opts.Password)
	argv = append(argv, in.Path, StdoutTarget)

	return Invocation{
		Executable: pick(opts.Executable, b.tools.Text, DefaultTextTool),
		Args:       argv,
		Stdin:      in.Stdin,
	}
}

// Render builds a pdftocairo invocation writing one file per page under outputPrefix.
func (b *Builder) Render(opts domain.RenderOptions, in Input, outputPrefix string) Invocation {
	var argv []string
	argv = append(argv, formatFlag(opts.Format))
	argv = appendRange(argv, opts.Range)
	if opts.DPI > 0 {
		argv = append(argv, "-r", strconv.Itoa(opts.DPI))
	}
	if s := opts.ScaleTo; s != nil {
		argv = append(argv, "-scale-to-x", strconv.Itoa(s.X), "-scale-to-y", strconv.Itoa(s.Y))
	}
	if c := opts.Crop; c != nil {
		argv = append(argv,
			"-x", strconv.Itoa(c.X),
			"-y", strconv.Itoa(c.Y),
			"-W", strconv.Itoa(c.Width),
			"-H", strconv.Itoa(c.Height),
		)
	}
	if opts.CropBox {
		argv = append(argv, "-cropbox")
	}
	switch opts.Color {
	case domain.ColorMonochrome:
		argv = append(argv, "-mono")
	case domain.ColorGrayscale:
		argv = append(argv, "-gray")
	}
	if opts.Transparent {
		argv = append(argv, "-transp")
	}
	if opts.Antialias != "" {
		argv = append(argv, "-antialias", string(opts.Antialias))
	}
	argv = appendPassword(argv, opts.Password)
	argv = append(argv, in.Path, outputPrefix)

	return Invocation{
		Executable: pick(opts.Executable, b.tools.Render, DefaultRenderTool),
		Args:       argv,
		Stdin:      in.Stdin,
	}
}

func formatFlag(f domain.OutputFormat) string {
	switch f {
	case domain.FormatJPEG:
		return "-jpeg"
	case domain.FormatTIFF:
		return "-tiff"
	default:
		return "-png"
	}
}

// appendRange emits -f/-l only for the bounds that are set.
func appendRange(argv []string, r domain.PageRange) []string {
	if r.First > 0 {
		argv = append(argv, "-f", strconv.Itoa(r.First))
	}
	if r.Last > 0 {
		argv = append(argv, "-l", strconv.Itoa(r.Last))
	}
	return argv
}

func appendPassword(argv []string, p *domain.Password) []string {
	if p == nil {
		return argv
	}
	return append(argv, p.Flag(), p.Value.Reveal())
}
