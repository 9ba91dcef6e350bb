// Package errkind holds the error kinds shared by the table, resolver and
// aggregator packages. Call sites wrap one of these with context
// (code, file, offending value) and callers classify with errors.Is.
package errkind

import "errors"

var (
	// ErrFormat: malformed placeholder, notation, or table layout.
	ErrFormat = errors.New("format error")
	// ErrNotFound: key absent from a lookup.
	ErrNotFound = errors.New("not found")
	// ErrUnknownSymbol: chemical symbol absent from the symbol map.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrConsistency: energy grids disagree between paired or successive runs.
	ErrConsistency = errors.New("consistency error")
	// ErrDataCorruption: the mass table violates its primary key or symbol maps.
	ErrDataCorruption = errors.New("data corruption")
	// ErrIO: a file or download could not be read or written.
	ErrIO = errors.New("io error")
)
