package domain

import (
	"fmt"
	"strconv"
)

// PlainTextLocator is the locator given to the single unit of a text file.
const PlainTextLocator = "1"

// Unit is an intermediate segmentation result. Units only exist during
// ingestion; the chunker turns them into Chunks.
type Unit struct {
	// Text is the unit content.
	Text string

	// SourceFile is the filename the unit came from.
	SourceFile string

	// Locator pinpoints the unit within its source: "1" for plain text,
	// a 1-based page number in page mode, or "Article N" in article mode.
	Locator string

	// ArticleNumber is N for article-mode units, empty otherwise.
	ArticleNumber string
}

// ArticleLocator formats the locator for article n.
func ArticleLocator(n string) string {
	return "Article " + n
}

// PageLocator formats the locator for a 1-based page number.
func PageLocator(page int) string {
	return strconv.Itoa(page)
}

// String returns a short description for logs.
func (u Unit) String() string {
	return fmt.Sprintf("%s@%s (%d chars)", u.SourceFile, u.Locator, len(u.Text))
}
