// Package pdf orchestrates poppler invocations: validate, build arguments,
// stage input, run, classify the exit and parse the output.
package pdf

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spherical/pdfproc/internal/args"
	"github.com/spherical/pdfproc/internal/classify"
	"github.com/spherical/pdfproc/internal/domain"
	"github.com/spherical/pdfproc/internal/observability"
	"github.com/spherical/pdfproc/internal/parse"
)

// Settings are the service-wide defaults applied to every call.
type Settings struct {
	TempDir        string
	InputMode      args.InputMode
	DefaultTimeout time.Duration
	DefaultDPI     int
	DefaultFormat  domain.OutputFormat
	MaxConcurrency int
	OCRLanguages   string
}

// Service runs the poppler tools. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	runner     domain.Runner
	builder    *args.Builder
	classifier *classify.Classifier
	validator  *Validator
	settings   Settings
	logger     *observability.Logger
}

// NewService creates a new service.
func NewService(runner domain.Runner, builder *args.Builder, classifier *classify.Classifier, settings Settings, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.Nop()
	}
	if settings.InputMode == "" {
		settings.InputMode = args.InputFile
	}
	if settings.DefaultDPI == 0 {
		settings.DefaultDPI = 150
	}
	if settings.DefaultFormat == "" {
		settings.DefaultFormat = domain.FormatPNG
	}
	if settings.MaxConcurrency < 1 {
		settings.MaxConcurrency = 1
	}
	return &Service{
		runner:     runner,
		builder:    builder,
		classifier: classifier,
		validator:  NewValidator(),
		settings:   settings,
		logger:     logger,
	}
}

// ReadInfo runs pdfinfo and parses its report.
func (s *Service) ReadInfo(ctx context.Context, src domain.Source, opts domain.InfoOptions) (*domain.DocumentInfo, error) {
	if err := s.validator.ValidateSource(src); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateInfo(opts); err != nil {
		return nil, err
	}

	scope := s.newScope()
	defer s.release(scope)

	in, err := scope.StageInput(src, s.settings.InputMode)
	if err != nil {
		return nil, err
	}

	outcome, err := s.execute(ctx, "info", s.builder.Info(opts, in), opts.Invocation, opts.Password != nil)
	if err != nil {
		return nil, err
	}
	return parse.Info(outcome.Stdout)
}

// ExtractText runs pdftotext and decodes its output.
func (s *Service) ExtractText(ctx context.Context, src domain.Source, opts domain.TextOptions) (*domain.ExtractedText, error) {
	if err := s.validator.ValidateSource(src); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateText(opts); err != nil {
		return nil, err
	}

	scope := s.newScope()
	defer s.release(scope)

	in, err := scope.StageInput(src, s.settings.InputMode)
	if err != nil {
		return nil, err
	}

	outcome, err := s.execute(ctx, "text", s.builder.Text(opts, in), opts.Invocation, opts.Password != nil)
	if err != nil {
		return nil, err
	}
	return parse.Text(outcome.Stdout, opts), nil
}

// ExtractWords runs pdftotext -bbox and returns per-page word boxes.
func (s *Service) ExtractWords(ctx context.Context, src domain.Source, opts domain.WordsOptions) ([]domain.PageWords, error) {
	if err := s.validator.ValidateSource(src); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateWords(opts); err != nil {
		return nil, err
	}

	scope := s.newScope()
	defer s.release(scope)

	in, err := scope.StageInput(src, s.settings.InputMode)
	if err != nil {
		return nil, err
	}

	outcome, err := s.execute(ctx, "words", s.builder.Words(opts, in), opts.Invocation, opts.Password != nil)
	if err != nil {
		return nil, err
	}
	return parse.Words(outcome.Stdout, opts.Range)
}

func (s *Service) newScope() *args.Scope {
	return args.NewScope(s.settings.TempDir)
}

func (s *Service) release(scope *args.Scope) {
	if err := scope.Release(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to remove temporary files")
	}
}

// execute runs one invocation and classifies its exit. The returned outcome
// always has exit code 0.
func (s *Service) execute(ctx context.Context, op string, inv args.Invocation, call domain.Invocation, passwordGiven bool) (*domain.Outcome, error) {
	cmd := inv.Command(call)
	cmd.Timeout = effectiveTimeout(call, s.settings.DefaultTimeout)

	start := time.Now()
	outcome, err := s.runner.Run(ctx, cmd)
	if err != nil {
		s.logger.WithOperation(op).Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("invocation failed")
		return nil, err
	}

	if err := s.classifier.Classify(filepath.Base(inv.Executable), outcome, passwordGiven); err != nil {
		s.logger.WithOperation(op).Debug().
			Int("exit_code", outcome.ExitCode).
			Str("error_type", string(domain.TypeOf(err))).
			Msg("tool reported failure")
		return nil, err
	}
	return outcome, nil
}
