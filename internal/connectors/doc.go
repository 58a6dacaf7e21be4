// Package connectors provides sources of corpus change events.
// Each connector watches one kind of document store (currently the
// local filesystem) and reports which documents need re-indexing.
package connectors
