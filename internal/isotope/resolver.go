package isotope

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/user/skygp_go/internal/errkind"
)

// notationPattern matches "Ca48" or "48Ca", letters in any case.
var notationPattern = regexp.MustCompile(`[A-Za-z]{1,2}\d{1,3}|\d{1,3}[A-Za-z]{1,2}`)

// Resolver turns isotope notations into (A, Z) and computes masses from a
// fixed Table.
type Resolver struct {
	table *Table
}

func NewResolver(t *Table) *Resolver {
	return &Resolver{table: t}
}

// Table returns the table the resolver reads from.
func (r *Resolver) Table() *Table { return r.table }

// ParseNotation finds the single isotope token in text, e.g. "ca40" or
// "40Ca", and resolves it to (A, Z).
func (r *Resolver) ParseNotation(text string) (Key, error) {
	matches := notationPattern.FindAllString(text, -1)
	if len(matches) != 1 {
		return Key{}, fmt.Errorf("%w: notation %q has %d isotope tokens, want 1", errkind.ErrFormat, text, len(matches))
	}
	var letters, digits strings.Builder
	for _, c := range matches[0] {
		if unicode.IsDigit(c) {
			digits.WriteRune(c)
		} else {
			letters.WriteRune(c)
		}
	}

	a, err := strconv.Atoi(digits.String())
	if err != nil {
		return Key{}, fmt.Errorf("%w: notation %q: %v", errkind.ErrFormat, text, err)
	}
	symbol := canonicalSymbol(letters.String())
	z, err := r.table.ZOf(symbol)
	if err != nil {
		return Key{}, fmt.Errorf("%w: chemical symbol %q in %q", errkind.ErrUnknownSymbol, symbol, text)
	}
	return Key{A: a, Z: z}, nil
}

func canonicalSymbol(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Mass returns the total mass of the isotope written as notation.
func (r *Resolver) Mass(notation string, unit Unit) (float64, error) {
	k, err := r.ParseNotation(notation)
	if err != nil {
		return 0, err
	}
	return r.MassOf(k, unit)
}

// MassOf returns A times the atomic mass unit plus the tabulated mass
// excess, expressed in unit.
func (r *Resolver) MassOf(k Key, unit Unit) (float64, error) {
	rec, err := r.table.Record(k.A, k.Z)
	if err != nil {
		return 0, err
	}
	massMeV := float64(k.A)*AtomicMassUnitMeV + MeV.Convert(rec.MassExcess, KeV)
	return unit.Convert(massMeV, MeV), nil
}
