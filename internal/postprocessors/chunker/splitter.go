package chunker

import (
	"strings"
	"unicode/utf8"
)

// SplitText splits text into windows of at most chunkSize characters.
// Every window is trimmed of surrounding whitespace; empty windows are dropped.
func (p *Processor) SplitText(text string) []string {
	return p.split(text, p.separators)
}

// split applies the first separator found in text and recurses into
// pieces that are still too long.
func (p *Processor) split(text string, separators []string) []string {
	sep := ""
	var rest []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var (
		out  []string
		good []string
	)
	for _, piece := range splitKeepSeparator(text, sep) {
		if runeLen(piece) <= p.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, p.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, p.merge(splitKeepSeparator(piece, ""))...)
			continue
		}
		out = append(out, p.split(piece, rest)...)
	}
	if len(good) > 0 {
		out = append(out, p.merge(good)...)
	}
	return out
}

// merge packs pieces into windows, carrying up to overlap characters
// from the end of one window into the next.
func (p *Processor) merge(pieces []string) []string {
	var (
		out     []string
		current []string
		total   int
	)

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > p.chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
				out = append(out, doc)
			}
			for total > p.overlap || (total+n > p.chunkSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}

	if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
		out = append(out, doc)
	}
	return out
}

// splitKeepSeparator splits text after each separator so the pieces
// concatenate back to text. The empty separator splits into characters.
func splitKeepSeparator(text, sep string) []string {
	var parts []string
	if sep == "" {
		parts = strings.Split(text, "")
	} else {
		parts = strings.SplitAfter(text, sep)
	}

	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
