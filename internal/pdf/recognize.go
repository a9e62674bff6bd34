package pdf

import (
	"context"
	"fmt"

	"github.com/spherical/pdfproc/internal/domain"
	"github.com/spherical/pdfproc/internal/imaging"
)

// Recognize renders pages as PNG and hands each image to the OCR
// collaborator. It fails with imaging.ErrOCRNotEnabled before rendering when
// OCR support is not compiled in.
func (s *Service) Recognize(ctx context.Context, src domain.Source, opts domain.RenderOptions) (*domain.ExtractedText, error) {
	recognizer, err := imaging.NewRecognizer(s.settings.OCRLanguages)
	if err != nil {
		return nil, fmt.Errorf("start ocr: %w", err)
	}
	defer func() {
		if err := recognizer.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close ocr client")
		}
	}()

	opts.Format = domain.FormatPNG
	opts.Transparent = false
	images, err := s.Render(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	pages := make([]domain.PageText, 0, len(images))
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, domain.TimeoutError("ocr interrupted", err)
		}
		text, err := recognizer.Recognize(img.Data)
		if err != nil {
			return nil, fmt.Errorf("ocr page %d: %w", img.Page, err)
		}
		s.logger.WithOperation("recognize").Debug().Page(img.Page).Int("chars", len(text)).Msg("page recognised")
		pages = append(pages, domain.PageText{Page: img.Page, Text: text})
	}
	return &domain.ExtractedText{Pages: pages}, nil
}
