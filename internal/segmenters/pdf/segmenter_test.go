package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// mockExtractor is a test double for PageExtractor.
type mockExtractor struct {
	pages []string
	err   error
}

func (m *mockExtractor) ExtractPages(_ context.Context, _ []byte) ([]string, error) {
	return m.pages, m.err
}

func rawPDF(name string) *domain.RawDocument {
	return &domain.RawDocument{Filename: name, MediaType: domain.MediaTypePDF, Content: []byte("%PDF-1.4")}
}

func TestNew(t *testing.T) {
	s := New()
	require.NotNil(t, s)
	assert.Equal(t, domain.SegmentModeArticle, s.Mode())
	assert.Equal(t, []domain.MediaType{domain.MediaTypePDF}, s.SupportedMediaTypes())
	assert.Equal(t, "pdf(article)", s.String())
}

func TestWithMode_IgnoresInvalid(t *testing.T) {
	s := New(WithMode("chapter"))
	assert.Equal(t, domain.SegmentModeArticle, s.Mode())

	s = New(WithMode(domain.SegmentModePage))
	assert.Equal(t, domain.SegmentModePage, s.Mode())
}

func TestSegment_ArticleMode_TwoArticles(t *testing.T) {
	ext := &mockExtractor{pages: []string{
		"Pasal 1\nKereta api adalah sarana perkeretaapian.",
		"Pasal 2\nPrasarana meliputi jalur dan stasiun.",
	}}
	s := New(WithExtractor(ext))

	units, err := s.Segment(context.Background(), rawPDF("uu.pdf"))

	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "Article 1", units[0].Locator)
	assert.Equal(t, "1", units[0].ArticleNumber)
	assert.Equal(t, "Pasal 1\nKereta api adalah sarana perkeretaapian.", units[0].Text)
	assert.NotContains(t, units[0].Text, "Prasarana")

	assert.Equal(t, "Article 2", units[1].Locator)
	assert.Equal(t, "2", units[1].ArticleNumber)
	assert.Equal(t, "Pasal 2\nPrasarana meliputi jalur dan stasiun.", units[1].Text)
	assert.NotContains(t, units[1].Text, "Kereta api")

	for _, u := range units {
		assert.Equal(t, "uu.pdf", u.SourceFile)
	}
}

func TestSegment_ArticleMode_DropsPreamble(t *testing.T) {
	ext := &mockExtractor{pages: []string{
		"UNDANG-UNDANG REPUBLIK INDONESIA\nMenimbang: bahwa ...",
		"PASAL 7 Ketentuan umum.",
	}}

	units, err := New(WithExtractor(ext)).Segment(context.Background(), rawPDF("uu.pdf"))

	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Article 7", units[0].Locator)
	assert.NotContains(t, units[0].Text, "Menimbang")
}

func TestSegment_ArticleMode_NoMarkers(t *testing.T) {
	ext := &mockExtractor{pages: []string{"Daftar isi tanpa penanda."}}

	units, err := New(WithExtractor(ext)).Segment(context.Background(), rawPDF("x.pdf"))

	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestSegment_PageMode(t *testing.T) {
	ext := &mockExtractor{pages: []string{"first page", "   ", "third page"}}
	s := New(WithExtractor(ext), WithMode(domain.SegmentModePage))

	units, err := s.Segment(context.Background(), rawPDF("manual.pdf"))

	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "1", units[0].Locator)
	assert.Equal(t, "first page", units[0].Text)
	assert.Equal(t, "3", units[1].Locator)
}

func TestSegment_ZeroExtractableText(t *testing.T) {
	for _, mode := range []domain.SegmentMode{domain.SegmentModeArticle, domain.SegmentModePage} {
		t.Run(string(mode), func(t *testing.T) {
			ext := &mockExtractor{pages: []string{"", ""}}
			units, err := New(WithExtractor(ext), WithMode(mode)).Segment(context.Background(), rawPDF("scan.pdf"))
			require.NoError(t, err)
			assert.Empty(t, units)
		})
	}
}

func TestSegment_ExtractorError(t *testing.T) {
	ext := &mockExtractor{err: errors.New("bad xref")}

	units, err := New(WithExtractor(ext)).Segment(context.Background(), rawPDF("broken.pdf"))

	assert.Nil(t, units)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIngestion)
	assert.Contains(t, err.Error(), "broken.pdf")
}

func TestSegment_NilDocument(t *testing.T) {
	units, err := New().Segment(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, units)
}

func TestExtractor_RejectsNonPDF(t *testing.T) {
	pages, err := NewExtractor().ExtractPages(context.Background(), []byte("this is not a pdf"))
	assert.Error(t, err)
	assert.Nil(t, pages)
}
