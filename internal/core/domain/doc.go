// Package domain holds the entities railkm works with and the errors it
// reports.
//
// A RawDocument from the corpus is split by a segmenter into Units (the
// whole file, one page, or one "Pasal" article). Units become Chunks, the
// rows of the vector index, each carrying ChunkMetadata that points back
// to its file and locator. A question produces an Answer whose Sources
// cite those chunks in rank order.
//
// The package imports only the standard library; every other package in
// the module may depend on it.
package domain
