package pdf

import (
	"context"
	"path/filepath"

	"github.com/spherical/pdfproc/internal/domain"
	"github.com/spherical/pdfproc/internal/parse"
)

// Render rasterizes pages with pdftocairo into a private directory and loads
// the resulting images in page order. The directory is removed before Render
// returns. A range with bounds is checked against the page count pdfinfo
// reports before pdftocairo runs.
func (s *Service) Render(ctx context.Context, src domain.Source, opts domain.RenderOptions) ([]domain.RenderedImage, error) {
	opts = s.renderDefaults(opts)

	if err := s.validator.ValidateSource(src); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateRender(opts); err != nil {
		return nil, err
	}

	expect := opts.Range
	if !opts.Range.IsZero() {
		count, err := s.pageCount(ctx, src, opts.Invocation, opts.Password)
		if err != nil {
			return nil, err
		}
		if err := s.validator.ValidateRangeWithin(opts.Range, count); err != nil {
			return nil, err
		}
		if !expect.HasLast() {
			expect = domain.Pages(expect.First, count)
		}
	}

	scope := s.newScope()
	defer s.release(scope)

	in, err := scope.StageInput(src, s.settings.InputMode)
	if err != nil {
		return nil, err
	}
	dir, prefix, err := scope.ReserveOutputDir()
	if err != nil {
		return nil, err
	}

	if _, err := s.execute(ctx, "render", s.builder.Render(opts, in, prefix), opts.Invocation, opts.Password != nil); err != nil {
		return nil, err
	}

	images, err := parse.Images(dir, filepath.Base(prefix), opts.Format, expect)
	if err != nil {
		return nil, err
	}

	s.logger.WithOperation("render").Debug().
		Int("pages", len(images)).
		Str("format", string(opts.Format)).
		Int("dpi", opts.DPI).
		Msg("render complete")
	return images, nil
}

// renderDefaults fills unset DPI and format from the service settings.
func (s *Service) renderDefaults(opts domain.RenderOptions) domain.RenderOptions {
	if opts.DPI == 0 {
		opts.DPI = s.settings.DefaultDPI
	}
	if opts.Format == "" {
		opts.Format = s.settings.DefaultFormat
	}
	return opts
}
