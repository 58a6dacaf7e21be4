package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/railkm/internal/logger"
)

// Ensure Extractor implements the interface.
var _ PageExtractor = (*Extractor)(nil)

// Extractor reads page text with github.com/ledongthuc/pdf.
type Extractor struct{}

// NewExtractor creates the default page extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPages returns the plain text of every page in order.
// Pages whose text cannot be decoded are logged and returned empty so
// page numbers stay aligned.
func (e *Extractor) ExtractPages(ctx context.Context, content []byte) (pages []string, err error) {
	// The parser panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("corrupt PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	pageCount := reader.NumPage()
	pages = make([]string, 0, pageCount)

	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("failed to extract text from page %d: %v", i, err)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}
