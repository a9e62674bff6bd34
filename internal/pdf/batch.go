package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spherical/pdfproc/internal/args"
	"github.com/spherical/pdfproc/internal/domain"
	"github.com/spherical/pdfproc/internal/parse"
)

// TextPages extracts the given pages with one pdftotext process per page,
// up to MaxConcurrency at a time. Pages are checked against the page count
// pdfinfo reports before any extraction starts. The result keeps the order of
// pages; the first failure cancels the remaining work and no partial result
// is returned.
//
// Progress is reported on events when it is non-nil. Sends never block; events
// are dropped when the channel is full.
func (s *Service) TextPages(ctx context.Context, src domain.Source, pages []int, opts domain.TextOptions, events chan<- domain.StreamEvent) (*domain.ExtractedText, error) {
	if err := s.validator.ValidateSource(src); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateText(opts); err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePages(pages, 0); err != nil {
		return nil, err
	}

	results, err := fanOutPages(ctx, s, "text_pages", src, pages, opts.Invocation, opts.Password, events,
		func(ctx context.Context, scope *args.Scope, in args.Input, page int) (domain.PageText, error) {
			pageOpts := opts
			pageOpts.Range = domain.Page(page)
			pageOpts.SplitPages = true

			outcome, err := s.execute(ctx, "text_pages", s.builder.Text(pageOpts, in), opts.Invocation, opts.Password != nil)
			if err != nil {
				return domain.PageText{}, err
			}
			var text strings.Builder
			for _, p := range parse.Text(outcome.Stdout, pageOpts).Pages {
				text.WriteString(p.Text)
			}
			return domain.PageText{Page: page, Text: text.String()}, nil
		})
	if err != nil {
		return nil, err
	}
	return &domain.ExtractedText{Pages: results}, nil
}

// RenderPages renders the given pages with one pdftocairo process per page,
// concurrently, and returns the images in the order requested. opts.Range is
// ignored. Bounds are checked against pdfinfo before anything is rendered.
func (s *Service) RenderPages(ctx context.Context, src domain.Source, pages []int, opts domain.RenderOptions, events chan<- domain.StreamEvent) ([]domain.RenderedImage, error) {
	opts = s.renderDefaults(opts)
	opts.Range = domain.PageRange{}

	if err := s.validator.ValidateSource(src); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateRender(opts); err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePages(pages, 0); err != nil {
		return nil, err
	}

	return fanOutPages(ctx, s, "render_pages", src, pages, opts.Invocation, opts.Password, events,
		func(ctx context.Context, scope *args.Scope, in args.Input, page int) (domain.RenderedImage, error) {
			pageOpts := opts
			pageOpts.Range = domain.Page(page)

			dir, prefix, err := scope.ReserveOutputDir()
			if err != nil {
				return domain.RenderedImage{}, err
			}
			if _, err := s.execute(ctx, "render_pages", s.builder.Render(pageOpts, in, prefix), opts.Invocation, opts.Password != nil); err != nil {
				return domain.RenderedImage{}, err
			}
			images, err := parse.Images(dir, filepath.Base(prefix), opts.Format, pageOpts.Range)
			if err != nil {
				return domain.RenderedImage{}, err
			}
			return images[0], nil
		})
}

// pageWork produces the result for one page. Temporaries it creates belong
// to scope.
type pageWork[T any] func(ctx context.Context, scope *args.Scope, in args.Input, page int) (T, error)

// fanOutPages checks pages against the document's page count, stages the
// input once and runs work for every page under an errgroup limited to
// MaxConcurrency. Results keep the order of pages.
func fanOutPages[T any](ctx context.Context, s *Service, op string, src domain.Source, pages []int, call domain.Invocation, password *domain.Password, events chan<- domain.StreamEvent, work pageWork[T]) ([]T, error) {
	start := time.Now()

	count, err := s.pageCount(ctx, src, call, password)
	if err != nil {
		s.emitError(events, err)
		return nil, err
	}
	if err := s.validator.ValidatePages(pages, count); err != nil {
		s.emitError(events, err)
		return nil, err
	}

	scope := s.newScope()
	defer s.release(scope)

	in, err := scope.StageInput(src, s.settings.InputMode)
	if err != nil {
		return nil, err
	}

	s.emitEvent(events, domain.StreamEvent{
		Type:      domain.EventStart,
		Payload:   fmt.Sprintf("Processing %d pages of %s", len(pages), src),
		Timestamp: time.Now(),
	})

	results := make([]T, len(pages))
	var invocations atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.MaxConcurrency)
	for i, page := range pages {
		g.Go(func() error {
			s.emitEvent(events, domain.StreamEvent{
				Type:       domain.EventPageProcessing,
				PageNumber: page,
				Payload:    fmt.Sprintf("Processing page %d", page),
				Timestamp:  time.Now(),
			})

			invocations.Add(1)
			result, err := work(gctx, scope, in, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			results[i] = result

			s.emitEvent(events, domain.StreamEvent{
				Type:       domain.EventPageComplete,
				PageNumber: page,
				Payload:    fmt.Sprintf("Completed page %d", page),
				Timestamp:  time.Now(),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.emitError(events, err)
		return nil, err
	}

	stats := domain.ProcessingStats{
		TotalTime:      time.Since(start),
		PagesProcessed: len(pages),
		Invocations:    int(invocations.Load()) + 1,
	}
	s.emitEvent(events, domain.StreamEvent{
		Type:      domain.EventComplete,
		Payload:   stats,
		Timestamp: time.Now(),
	})
	s.logger.WithOperation(op).Info().
		Int("pages", stats.PagesProcessed).
		Int("invocations", stats.Invocations).
		Dur("elapsed", stats.TotalTime).
		Msg("batch complete")

	return results, nil
}

// pageCount asks pdfinfo how many pages the document has.
func (s *Service) pageCount(ctx context.Context, src domain.Source, call domain.Invocation, password *domain.Password) (int, error) {
	info, err := s.ReadInfo(ctx, src, domain.InfoOptions{
		Invocation: domain.Invocation{Timeout: call.Timeout},
		Password:   password,
	})
	if err != nil {
		return 0, err
	}
	if info.Pages == nil {
		return 0, domain.MalformedOutputError("pdfinfo did not report a page count", nil)
	}
	return *info.Pages, nil
}

// emitEvent safely emits an event to the channel
func (s *Service) emitEvent(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh != nil {
		select {
		case eventCh <- event:
		default:
			s.logger.Warn().Str("event", string(event.Type)).Msg("event channel full, dropping event")
		}
	}
}

// emitError emits an error event
func (s *Service) emitError(eventCh chan<- domain.StreamEvent, err error) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventError,
		Payload:   err.Error(),
		Timestamp: time.Now(),
	})
}
