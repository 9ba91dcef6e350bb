// Package isotope parses the atomic mass evaluation table and answers
// nuclide lookups and mass queries against it.
package isotope

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/user/skygp_go/internal/errkind"
	"github.com/user/skygp_go/internal/fixedwidth"
)

var (
	symbolPattern = regexp.MustCompile(`[A-Za-z]+`)
	numberPattern = regexp.MustCompile(`[-+]?(\d+\.?\d*|\.\d+)`)
)

// Table is an immutable, indexed mass table. Build a new one to change it.
type Table struct {
	records    map[Key]Record
	sorted     []Record
	zToSymbol  map[int]string
	symbolToZ  map[string]int
	fieldCount int
}

// FindDataStart returns the index of the line on which marker, as a line
// prefix, has been seen count times.
func FindDataStart(lines []string, marker string, count int) (int, error) {
	seen := 0
	for i, line := range lines {
		if strings.HasPrefix(line, marker) {
			seen++
		}
		if seen >= count {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: data marker %q seen %d times, need %d", errkind.ErrFormat, marker, seen, count)
}

// Build parses the raw text of a mass evaluation file. Header and legend
// lines are skipped, the remainder is auto-split into columns and the
// columns named by opts.Layout become record fields.
func Build(lines []string, opts BuildOptions) (*Table, error) {
	start, err := FindDataStart(lines, opts.DataMarker, opts.MarkerCount)
	if err != nil {
		return nil, err
	}
	data := make([]string, 0, len(lines)-start)
	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		data = append(data, line)
	}

	split, err := fixedwidth.Split(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.ErrFormat, err)
	}
	n := split.NumFields()
	if opts.Layout.ExpectedFields > 0 && n != opts.Layout.ExpectedFields {
		return nil, fmt.Errorf("%w: mass table split into %d columns, layout expects %d",
			errkind.ErrFormat, n, opts.Layout.ExpectedFields)
	}
	if opts.Layout.maxIndex() >= n {
		return nil, fmt.Errorf("%w: mass table split into %d columns, layout needs index %d",
			errkind.ErrFormat, n, opts.Layout.maxIndex())
	}

	records := make([]Record, 0, len(split.Rows))
	for i, row := range split.Rows {
		rec, err := projectRow(row, opts.Layout)
		if err != nil {
			return nil, fmt.Errorf("data row %d: %w", start+i+1, err)
		}
		records = append(records, rec)
	}

	t, err := NewTable(records, opts.Renames)
	if err != nil {
		return nil, err
	}
	t.fieldCount = n
	return t, nil
}

func projectRow(row []string, l Layout) (Record, error) {
	var rec Record
	var err error
	if rec.Z, err = parseDigits(row[l.Z]); err != nil {
		return rec, fmt.Errorf("column Z: %w", err)
	}
	if rec.A, err = parseDigits(row[l.A]); err != nil {
		return rec, fmt.Errorf("column A: %w", err)
	}
	if rec.Symbol = symbolPattern.FindString(row[l.Symbol]); rec.Symbol == "" {
		return rec, fmt.Errorf("%w: column symbol: no letters in %q", errkind.ErrFormat, row[l.Symbol])
	}
	if rec.MassExcess, err = parseLeadingNumber(row[l.MassExcess]); err != nil {
		return rec, fmt.Errorf("column mass_excess: %w", err)
	}
	if rec.MassExcessErr, err = parseLeadingNumber(row[l.MassExcessErr]); err != nil {
		return rec, fmt.Errorf("column mass_excess_err: %w", err)
	}
	return rec, nil
}

func parseDigits(field string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, field)
	if digits == "" {
		return 0, fmt.Errorf("%w: no digits in %q", errkind.ErrFormat, field)
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", errkind.ErrFormat, field, err)
	}
	return v, nil
}

// parseLeadingNumber reads the first signed decimal in field, ignoring
// trailing flags such as the "#" that marks estimated values.
func parseLeadingNumber(field string) (float64, error) {
	m := numberPattern.FindString(field)
	if m == "" {
		return 0, fmt.Errorf("%w: no number in %q", errkind.ErrFormat, field)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", errkind.ErrFormat, field, err)
	}
	return v, nil
}

// NewTable indexes records by (A, Z) after applying renames to every record
// of a renamed charge number. Duplicate keys, charge numbers printed with
// two symbols, and symbols shared by two charge numbers are all
// ErrDataCorruption.
func NewTable(records []Record, renames map[int]string) (*Table, error) {
	t := &Table{
		records:   make(map[Key]Record, len(records)),
		sorted:    make([]Record, 0, len(records)),
		zToSymbol: make(map[int]string),
		symbolToZ: make(map[string]int),
	}
	for _, rec := range records {
		if s, ok := renames[rec.Z]; ok {
			rec.Symbol = s
		}
		key := Key{A: rec.A, Z: rec.Z}
		if _, dup := t.records[key]; dup {
			return nil, fmt.Errorf("%w: duplicate nuclide (A, Z) = (%d, %d)", errkind.ErrDataCorruption, rec.A, rec.Z)
		}
		if prev, ok := t.zToSymbol[rec.Z]; ok && prev != rec.Symbol {
			return nil, fmt.Errorf("%w: Z = %d has symbols %q and %q", errkind.ErrDataCorruption, rec.Z, prev, rec.Symbol)
		}
		t.records[key] = rec
		t.sorted = append(t.sorted, rec)
		t.zToSymbol[rec.Z] = rec.Symbol
	}
	for z, s := range t.zToSymbol {
		if other, ok := t.symbolToZ[s]; ok {
			return nil, fmt.Errorf("%w: symbol %q maps to both Z = %d and Z = %d",
				errkind.ErrDataCorruption, s, min(z, other), max(z, other))
		}
		t.symbolToZ[s] = z
	}
	sort.Slice(t.sorted, func(i, j int) bool {
		if t.sorted[i].Z != t.sorted[j].Z {
			return t.sorted[i].Z < t.sorted[j].Z
		}
		return t.sorted[i].A < t.sorted[j].A
	})
	return t, nil
}

// SymbolOf returns the chemical symbol for charge number z.
func (t *Table) SymbolOf(z int) (string, error) {
	s, ok := t.zToSymbol[z]
	if !ok {
		return "", fmt.Errorf("%w: no element with Z = %d", errkind.ErrNotFound, z)
	}
	return s, nil
}

// ZOf returns the charge number of an exactly matching symbol.
func (t *Table) ZOf(symbol string) (int, error) {
	z, ok := t.symbolToZ[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: no element with symbol %q", errkind.ErrNotFound, symbol)
	}
	return z, nil
}

// Record returns the nuclide (A, Z).
func (t *Table) Record(a, z int) (Record, error) {
	rec, ok := t.records[Key{A: a, Z: z}]
	if !ok {
		return Record{}, fmt.Errorf("%w: (A, Z) = (%d, %d)", errkind.ErrNotFound, a, z)
	}
	return rec, nil
}

// Records returns all nuclides ordered by Z, then A.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.sorted))
	copy(out, t.sorted)
	return out
}

// Len is the number of nuclides.
func (t *Table) Len() int { return len(t.records) }

// FieldCount is the number of columns the splitter found when the table was
// built from text, 0 for tables built from records.
func (t *Table) FieldCount() int { return t.fieldCount }
