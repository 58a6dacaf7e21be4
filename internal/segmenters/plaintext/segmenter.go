// Package plaintext segments UTF-8 text files into a single unit.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

// Ensure Segmenter implements the interface.
var _ driven.Segmenter = (*Segmenter)(nil)

// utf8BOM is stripped from the start of text files.
const utf8BOM = "\ufeff"

// Segmenter handles plain text documents.
type Segmenter struct{}

// New creates a new plain text segmenter.
func New() *Segmenter {
	return &Segmenter{}
}

// SupportedMediaTypes returns the media types this segmenter handles.
func (s *Segmenter) SupportedMediaTypes() []domain.MediaType {
	return []domain.MediaType{domain.MediaTypeText}
}

// Segment returns the whole document as one unit with locator "1".
// A file that is empty after trimming yields no units.
func (s *Segmenter) Segment(_ context.Context, raw *domain.RawDocument) ([]domain.Unit, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	if !utf8.Valid(raw.Content) {
		return nil, &domain.IngestionError{File: raw.Filename, Err: errInvalidUTF8}
	}

	text := strings.TrimPrefix(string(raw.Content), utf8BOM)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	return []domain.Unit{{
		Text:       text,
		SourceFile: raw.Filename,
		Locator:    domain.PlainTextLocator,
	}}, nil
}
