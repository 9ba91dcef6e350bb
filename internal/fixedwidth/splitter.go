// Package fixedwidth infers column boundaries of whitespace-aligned text
// tables whose layout is not known in advance.
//
// Offsets are byte offsets; the tables this is used on are ASCII.
package fixedwidth

import (
	"errors"
	"strings"
	"unicode"
)

// ErrNoLines is returned when Split is given nothing to split.
var ErrNoLines = errors.New("fixedwidth: no lines to split")

// Boundaries returns the start offsets of every column after the first.
//
// Only the first L bytes of each line are inspected, L being the length of
// the shortest line. Offset c is a boundary when no line has non-space bytes
// at both c-1 and c, and at least one line has a non-space byte at c.
func Boundaries(lines []string) []int {
	if len(lines) == 0 {
		return nil
	}
	minLen := len(lines[0])
	for _, line := range lines[1:] {
		if len(line) < minLen {
			minLen = len(line)
		}
	}

	var bounds []int
	for c := 1; c < minLen; c++ {
		isSplitter := true
		allSpace := true
		for _, line := range lines {
			if line[c] != ' ' {
				allSpace = false
				if line[c-1] != ' ' {
					isSplitter = false
				}
			}
			if !allSpace && !isSplitter {
				break
			}
		}
		if isSplitter && !allSpace {
			bounds = append(bounds, c)
		}
	}
	return bounds
}

// Spans turns boundary offsets into column spans starting at offset 0.
func Spans(bounds []int) []Span {
	spans := make([]Span, 0, len(bounds)+1)
	start := 0
	for _, b := range bounds {
		spans = append(spans, Span{Start: start, End: b})
		start = b
	}
	return append(spans, Span{Start: start, End: -1})
}

// Split detects the column layout shared by lines and cuts every line into
// fields. Line terminators are removed first. Fields keep their padding
// spaces; only leading and trailing control characters are trimmed.
func Split(lines []string) (*Result, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	clean := make([]string, len(lines))
	for i, line := range lines {
		clean[i] = strings.TrimRight(line, "\r\n")
	}

	spans := Spans(Boundaries(clean))
	rows := make([][]string, len(clean))
	for i, line := range clean {
		rows[i] = cut(line, spans)
	}
	return &Result{Spans: spans, Rows: rows}, nil
}

func cut(line string, spans []Span) []string {
	fields := make([]string, len(spans))
	for i, sp := range spans {
		start := min(sp.Start, len(line))
		end := len(line)
		if sp.End >= 0 {
			end = min(sp.End, len(line))
		}
		fields[i] = strings.TrimFunc(line[start:end], unicode.IsControl)
	}
	return fields
}
