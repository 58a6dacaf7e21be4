package domain

// ChangeType describes what happened to a corpus file.
type ChangeType string

// Change types reported by the corpus watcher.
const (
	// ChangeCreated is a new file in the corpus.
	ChangeCreated ChangeType = "created"

	// ChangeUpdated is a rewritten file.
	ChangeUpdated ChangeType = "updated"

	// ChangeDeleted is a removed or renamed-away file.
	ChangeDeleted ChangeType = "deleted"
)

// FileChange is a debounced change to one corpus document.
type FileChange struct {
	Type ChangeType

	// Path is the full path of the document.
	Path string

	// Filename is the document's base name, as stored in chunk metadata.
	Filename string
}
