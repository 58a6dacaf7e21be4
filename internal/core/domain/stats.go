package domain

import "sort"

// IndexStats summarises the vector index contents.
type IndexStats struct {
	// Documents is the number of distinct source files.
	Documents int `json:"documents"`

	// Chunks is the total number of stored chunks.
	Chunks int `json:"chunks"`

	// PerFile maps source file to chunk count.
	PerFile map[string]int `json:"per_file"`

	// PerClass maps document class to chunk count. Unclassified chunks use "".
	PerClass map[string]int `json:"per_class"`
}

// Filenames returns the indexed filenames in sorted order.
func (s *IndexStats) Filenames() []string {
	return SortedKeys(s.PerFile)
}

// SortedKeys returns the keys of a count map in sorted order.
func SortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IndexReport describes the outcome of a load.
type IndexReport struct {
	// Indexed is the number of chunks inserted.
	Indexed int `json:"indexed"`

	// Files lists the files that were indexed.
	Files []string `json:"files"`

	// Skipped lists the files that failed ingestion.
	Skipped []SkippedFile `json:"skipped,omitempty"`
}

// SkippedFile is a file dropped from a batch.
type SkippedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Merge adds another report's results to r.
func (r *IndexReport) Merge(other *IndexReport) {
	if other == nil {
		return
	}
	r.Indexed += other.Indexed
	r.Files = append(r.Files, other.Files...)
	r.Skipped = append(r.Skipped, other.Skipped...)
}
