// Package segmenters provides implementations of the Segmenter interface
// for the corpus document formats. Each segmenter knows how to turn the
// bytes of one media type into ordered units.
//
// Segmenters are registered with the Registry at startup.
package segmenters
