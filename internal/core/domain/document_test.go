package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaTypeFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected MediaType
	}{
		{"pdf", "uu-23-2007.pdf", MediaTypePDF},
		{"upper case pdf", "PERATURAN.PDF", MediaTypePDF},
		{"txt", "rail.txt", MediaTypeText},
		{"sidecar is not a document", "rail.txt.meta.json", ""},
		{"unsupported", "notes.docx", ""},
		{"no extension", "README", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MediaTypeFromFilename(tt.filename))
		})
	}
}

func TestSidecarName(t *testing.T) {
	assert.Equal(t, "rail.txt.meta.json", SidecarName("rail.txt"))
	assert.True(t, IsSidecar(SidecarName("rail.txt")))
	assert.False(t, IsSidecar("rail.txt"))
}

func TestMediaType_IsValid(t *testing.T) {
	assert.True(t, MediaTypePDF.IsValid())
	assert.True(t, MediaTypeText.IsValid())
	assert.False(t, MediaType("md").IsValid())
	assert.Equal(t, "pdf", MediaTypePDF.String())
}
