// Package pdf segments PDF documents into article or page units.
//
// Article mode concatenates the text of every page and splits it before
// each "Pasal N" marker (matched case-insensitively), producing one unit
// per article with locator "Article N". Text before the first marker
// (preambles, considerations, tables of contents) is dropped. Page mode
// produces one unit per page with non-empty text.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
	"github.com/custodia-labs/railkm/internal/logger"
)

// Ensure Segmenter implements the interface.
var _ driven.Segmenter = (*Segmenter)(nil)

// PageExtractor pulls the plain text of every page out of a PDF.
// Pages are returned in order; a page without text is an empty string.
type PageExtractor interface {
	ExtractPages(ctx context.Context, content []byte) ([]string, error)
}

// Segmenter handles PDF documents.
type Segmenter struct {
	mode      domain.SegmentMode
	extractor PageExtractor
}

// Option configures the PDF segmenter.
type Option func(*Segmenter)

// WithMode selects article or page segmentation.
func WithMode(mode domain.SegmentMode) Option {
	return func(s *Segmenter) {
		if mode.IsValid() {
			s.mode = mode
		}
	}
}

// WithExtractor replaces the PDF text extractor.
func WithExtractor(e PageExtractor) Option {
	return func(s *Segmenter) {
		if e != nil {
			s.extractor = e
		}
	}
}

// New creates a PDF segmenter. Defaults to article mode.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		mode:      domain.SegmentModeArticle,
		extractor: NewExtractor(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the segmentation policy in use.
func (s *Segmenter) Mode() domain.SegmentMode {
	return s.mode
}

// SupportedMediaTypes returns the media types this segmenter handles.
func (s *Segmenter) SupportedMediaTypes() []domain.MediaType {
	return []domain.MediaType{domain.MediaTypePDF}
}

// Segment extracts the PDF text and splits it according to the mode.
func (s *Segmenter) Segment(ctx context.Context, raw *domain.RawDocument) ([]domain.Unit, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	pages, err := s.extractor.ExtractPages(ctx, raw.Content)
	if err != nil {
		return nil, &domain.IngestionError{File: raw.Filename, Err: err}
	}
	logger.Debug("pdf %s: %d pages extracted", raw.Filename, len(pages))

	if s.mode == domain.SegmentModePage {
		return splitPages(pages, raw.Filename), nil
	}

	units := SplitArticles(strings.Join(pages, "\n"), raw.Filename)
	if len(units) == 0 && hasText(pages) {
		logger.Warn("pdf %s: no article markers found, document yields no units", raw.Filename)
	}
	return units, nil
}

// splitPages emits one unit per page that has text.
func splitPages(pages []string, filename string) []domain.Unit {
	var units []domain.Unit
	for i, text := range pages {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		units = append(units, domain.Unit{
			Text:       text,
			SourceFile: filename,
			Locator:    domain.PageLocator(i + 1),
		})
	}
	return units
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// String describes the segmenter for logs.
func (s *Segmenter) String() string {
	return fmt.Sprintf("pdf(%s)", s.mode)
}
