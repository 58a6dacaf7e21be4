package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaType identifies the format of a corpus document.
type MediaType string

// Supported media types.
const (
	// MediaTypePDF is a PDF document.
	MediaTypePDF MediaType = "pdf"

	// MediaTypeText is a UTF-8 plain text document.
	MediaTypeText MediaType = "txt"
)

// SidecarSuffix is appended to a document filename to form its sidecar name.
const SidecarSuffix = ".meta.json"

// IsValid returns true if the media type is supported.
func (m MediaType) IsValid() bool {
	return m == MediaTypePDF || m == MediaTypeText
}

// String returns the string representation.
func (m MediaType) String() string {
	return string(m)
}

// MediaTypeFromFilename derives the media type from a file extension.
// Returns an empty MediaType for unsupported files and for sidecars.
func MediaTypeFromFilename(name string) MediaType {
	if IsSidecar(name) {
		return ""
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	mt := MediaType(ext)
	if !mt.IsValid() {
		return ""
	}
	return mt
}

// IsSidecar reports whether name is a sidecar metadata file.
func IsSidecar(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), SidecarSuffix)
}

// SidecarName returns the sidecar filename for a document filename.
func SidecarName(filename string) string {
	return filename + SidecarSuffix
}

// RawDocument is a corpus file as read from disk, before segmentation.
type RawDocument struct {
	// Filename is the base name of the file, unique within the corpus.
	Filename string

	// Path is the full path the file was read from.
	Path string

	// MediaType is the document format.
	MediaType MediaType

	// Content is the raw file bytes.
	Content []byte
}

// DocumentMetadata is the sidecar record describing a document's provenance.
// It is stored next to the document as {name}.{ext}.meta.json.
type DocumentMetadata struct {
	// Filename is the document this record describes.
	Filename string `json:"filename"`

	// UploadBy is the actor that uploaded the document.
	UploadBy string `json:"upload_by"`

	// UploadAt is when the document was uploaded, as written by the uploader.
	UploadAt string `json:"upload_at"`

	// DocumentClass is the classification of the document (e.g. "regulation").
	DocumentClass string `json:"document_class"`

	// Description is a free-form summary of the document.
	Description string `json:"description"`
}

// UploadTimeFormat is the layout used when railkm stamps upload_at itself.
const UploadTimeFormat = time.RFC3339
