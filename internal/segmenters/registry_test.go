package segmenters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/segmenters/pdf"
	"github.com/custodia-labs/railkm/internal/segmenters/plaintext"
)

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(plaintext.New(), pdf.New())

	s, err := r.Get(domain.MediaTypeText)
	require.NoError(t, err)
	assert.IsType(t, &plaintext.Segmenter{}, s)

	s, err = r.Get(domain.MediaTypePDF)
	require.NoError(t, err)
	assert.IsType(t, &pdf.Segmenter{}, s)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry(plaintext.New())

	s, err := r.Get(domain.MediaTypePDF)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_SupportedMediaTypes(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.SupportedMediaTypes())

	r.Register(pdf.New())
	r.Register(plaintext.New())
	assert.Equal(t, []domain.MediaType{domain.MediaTypePDF, domain.MediaTypeText}, r.SupportedMediaTypes())
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	first := pdf.New()
	second := pdf.New(pdf.WithMode(domain.SegmentModePage))
	r := NewRegistry(first, second)

	s, err := r.Get(domain.MediaTypePDF)
	require.NoError(t, err)
	assert.Same(t, second, s)
}
