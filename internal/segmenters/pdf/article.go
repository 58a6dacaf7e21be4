package pdf

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// articleMarker matches "Pasal N" at a word boundary, in any case.
var articleMarker = regexp.MustCompile(`(?i)\bpasal\s+(\d+)`)

// SplitArticles splits text before every article marker. Each block
// starts with its marker and runs up to the next one. Content before
// the first marker is dropped.
func SplitArticles(text, filename string) []domain.Unit {
	matches := articleMarker.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	units := make([]domain.Unit, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		block := strings.TrimSpace(text[m[0]:end])
		number := text[m[2]:m[3]]

		units = append(units, domain.Unit{
			Text:          block,
			SourceFile:    filename,
			Locator:       domain.ArticleLocator(number),
			ArticleNumber: number,
		})
	}
	return units
}
