// Package parser reads the plain-text files produced by the transport
// simulation: per-run output tables and the parameter index.
package parser

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/user/skygp_go/internal/errkind"
)

// ReadRunOutput reads a whitespace-delimited run output file with the
// RunColumns layout.
func ReadRunOutput(path string) (*RunOutput, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open run output: %w", errkind.ErrIO, err)
	}
	defer file.Close()

	out := &RunOutput{Path: path}
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != len(RunColumns) {
			return nil, fmt.Errorf("%w: %s:%d: got %d columns, want %d",
				errkind.ErrFormat, path, lineNo, len(fields), len(RunColumns))
		}
		var vals [9]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: column %s: %q is not a number",
					errkind.ErrFormat, path, lineNo, RunColumns[i], f)
			}
			vals[i] = v
		}
		out.Rows = append(out.Rows, EnergyGridRow{
			BeamEnergy:     vals[0],
			ImpactParam:    vals[1],
			EnergyCM:       vals[2],
			YieldP:         vals[3],
			YieldPErr:      vals[4],
			YieldN:         vals[5],
			YieldNErr:      vals[6],
			SingleRatio:    vals[7],
			SingleRatioErr: vals[8],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", errkind.ErrIO, path, err)
	}
	return out, nil
}

// ReadParameterIndex reads a whitespace-delimited table whose header row
// names the columns, one of them "code". Every other column must be numeric.
func ReadParameterIndex(path string) (*ParameterIndex, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open parameter index: %w", errkind.ErrIO, err)
	}
	defer file.Close()

	var idx *ParameterIndex
	codeCol := -1
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if idx == nil {
			names := make([]string, 0, len(fields)-1)
			for i, name := range fields {
				if name == "code" {
					if codeCol >= 0 {
						return nil, fmt.Errorf("%w: %s: header has more than one code column", errkind.ErrFormat, path)
					}
					codeCol = i
					continue
				}
				names = append(names, name)
			}
			if codeCol < 0 {
				return nil, fmt.Errorf("%w: %s: header has no code column", errkind.ErrFormat, path)
			}
			if len(names) == 0 {
				return nil, fmt.Errorf("%w: %s: no parameter columns", errkind.ErrFormat, path)
			}
			idx = NewParameterIndex(path, names)
			continue
		}

		if len(fields) != len(idx.Names)+1 {
			return nil, fmt.Errorf("%w: %s:%d: got %d columns, header has %d",
				errkind.ErrFormat, path, lineNo, len(fields), len(idx.Names)+1)
		}
		code, err := strconv.Atoi(fields[codeCol])
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: code %q is not an integer", errkind.ErrFormat, path, lineNo, fields[codeCol])
		}
		if _, dup := idx.rows[code]; dup {
			return nil, fmt.Errorf("%w: %s:%d: code %03d listed twice", errkind.ErrFormat, path, lineNo, code)
		}
		row := make([]float64, 0, len(idx.Names))
		for i, f := range fields {
			if i == codeCol {
				continue
			}
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %q is not a number", errkind.ErrFormat, path, lineNo, f)
			}
			row = append(row, v)
		}
		idx.rows[code] = row
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", errkind.ErrIO, path, err)
	}
	if idx == nil {
		return nil, fmt.Errorf("%w: %s: empty parameter index", errkind.ErrFormat, path)
	}
	return idx, nil
}
