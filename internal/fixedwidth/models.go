package fixedwidth

// Span is a half-open byte interval [Start, End) of a line. End is -1 for
// the last column, which always runs to the end of its line.
type Span struct {
	Start int
	End   int
}

// Result holds the spans inferred for one batch of lines and the fields of
// every line cut along them. All rows have len(Spans) fields.
type Result struct {
	Spans []Span
	Rows  [][]string
}

// NumFields returns the number of columns detected.
func (r *Result) NumFields() int {
	return len(r.Spans)
}
