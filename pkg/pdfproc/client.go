package pdfproc

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/spherical/pdfproc/internal/args"
	"github.com/spherical/pdfproc/internal/classify"
	"github.com/spherical/pdfproc/internal/observability"
	"github.com/spherical/pdfproc/internal/pdf"
	"github.com/spherical/pdfproc/internal/process"
)

// Client is the main entry point for the library.
type Client struct {
	service *pdf.Service
	cfg     Config
}

type options struct {
	logger *observability.Logger
	runner Runner
}

// Option configures a Client.
type Option func(*options)

// WithLogger sends diagnostics to an existing zerolog logger. The default is
// to log nothing.
func WithLogger(zl zerolog.Logger) Option {
	return func(o *options) {
		o.logger = observability.FromZerolog(zl)
	}
}

// WithRunner replaces the process runner, e.g. with a sandboxing wrapper.
func WithRunner(r Runner) Option {
	return func(o *options) {
		o.runner = r
	}
}

// New creates a client from cfg. A nil cfg means DefaultConfig.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: observability.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	runner := o.runner
	if runner == nil {
		runner = process.NewRunner(
			process.WithLogger(o.logger),
			process.WithWaitDelay(cfg.Process.KillGrace),
			process.WithStderrLogging(cfg.Observability.LogStderr),
		)
	}

	service := pdf.NewService(
		runner,
		args.NewBuilder(cfg.Tools),
		classify.New(cfg.Patterns),
		pdf.Settings{
			TempDir:        cfg.TempDir,
			InputMode:      cfg.InputMode(),
			DefaultTimeout: cfg.Process.DefaultTimeout,
			DefaultDPI:     cfg.Render.DPI,
			DefaultFormat:  cfg.RenderFormat(),
			MaxConcurrency: cfg.Process.MaxConcurrency,
			OCRLanguages:   cfg.OCR.Languages,
		},
		o.logger,
	)

	return &Client{service: service, cfg: *cfg}, nil
}

// Config returns a copy of the configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// ReadInfo returns the document metadata pdfinfo reports.
func (c *Client) ReadInfo(ctx context.Context, src Source, opts InfoOptions) (*DocumentInfo, error) {
	return c.service.ReadInfo(ctx, src, opts)
}

// ExtractText returns the document text, as one block or split per page.
func (c *Client) ExtractText(ctx context.Context, src Source, opts TextOptions) (*ExtractedText, error) {
	return c.service.ExtractText(ctx, src, opts)
}

// Render rasterizes the selected pages. Images are returned in page order.
func (c *Client) Render(ctx context.Context, src Source, opts RenderOptions) ([]RenderedImage, error) {
	return c.service.Render(ctx, src, opts)
}

// ExtractWords returns every word with its bounding box, per page.
func (c *Client) ExtractWords(ctx context.Context, src Source, opts WordsOptions) ([]PageWords, error) {
	return c.service.ExtractWords(ctx, src, opts)
}

// TextPages extracts the listed pages concurrently, one process per page,
// and returns them in the order requested. Progress events are sent to
// events when it is non-nil; a full channel drops events rather than block.
func (c *Client) TextPages(ctx context.Context, src Source, pages []int, opts TextOptions, events chan<- StreamEvent) (*ExtractedText, error) {
	return c.service.TextPages(ctx, src, pages, opts, events)
}

// RenderPages renders the listed pages concurrently, one pdftocairo process
// per page, and returns the images in the order given. opts.Range is ignored.
func (c *Client) RenderPages(ctx context.Context, src Source, pages []int, opts RenderOptions, events chan<- StreamEvent) ([]RenderedImage, error) {
	return c.service.RenderPages(ctx, src, pages, opts, events)
}

// Recognize renders pages and runs OCR over them. Without the ocr build tag
// it returns ErrOCRNotEnabled.
func (c *Client) Recognize(ctx context.Context, src Source, opts RenderOptions) (*ExtractedText, error) {
	return c.service.Recognize(ctx, src, opts)
}
