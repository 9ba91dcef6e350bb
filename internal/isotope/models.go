package isotope

import (
	"fmt"
	"strings"

	"github.com/user/skygp_go/internal/errkind"
)

// Key is the primary key of the mass table.
type Key struct {
	A int
	Z int
}

// Record is one nuclide of the mass evaluation. Mass excess values are in keV.
type Record struct {
	Z             int
	A             int
	Symbol        string
	MassExcess    float64
	MassExcessErr float64
}

// Layout names the positional fields of an auto-split mass table that map to
// record fields. ExpectedFields pins the number of columns the splitter must
// find; 0 only requires every index to be in range.
type Layout struct {
	Z              int
	A              int
	Symbol         int
	MassExcess     int
	MassExcessErr  int
	ExpectedFields int
}

// DefaultLayout matches the AME2016 mass16.txt table, whose rows split into
// seventeen columns: cc, N-Z, N, Z, A, element, origin, mass excess and its
// error, binding energy per nucleon and its error, decay type, beta decay
// energy and its error, and the atomic mass as integer part, micro-u and
// error.
var DefaultLayout = Layout{Z: 3, A: 4, Symbol: 5, MassExcess: 7, MassExcessErr: 8, ExpectedFields: 17}

func (l Layout) maxIndex() int {
	return max(l.Z, l.A, l.Symbol, l.MassExcess, l.MassExcessErr)
}

// BuildOptions control how raw text is turned into a Table.
type BuildOptions struct {
	// DataMarker is the leading string that flags data rows in the header.
	DataMarker string
	// MarkerCount is the occurrence of DataMarker that starts the data.
	MarkerCount int
	Layout      Layout
	// Renames maps a charge number to the symbol that replaces whatever the
	// source table printed for it.
	Renames map[int]string
}

// DefaultRenames carries the element names adopted by IUPAC in 2016.
var DefaultRenames = map[int]string{113: "Nh", 115: "Mc", 117: "Ts", 118: "Og"}

// DefaultBuildOptions returns the options for the AME2016 table.
func DefaultBuildOptions() BuildOptions {
	renames := make(map[int]string, len(DefaultRenames))
	for z, s := range DefaultRenames {
		renames[z] = s
	}
	return BuildOptions{
		DataMarker:  "0",
		MarkerCount: 3,
		Layout:      DefaultLayout,
		Renames:     renames,
	}
}

// Unit is an energy unit used for mass queries.
type Unit struct {
	Name string
	eV   float64
}

var (
	EV  = Unit{Name: "eV", eV: 1}
	KeV = Unit{Name: "keV", eV: 1e3}
	MeV = Unit{Name: "MeV", eV: 1e6}
	GeV = Unit{Name: "GeV", eV: 1e9}
)

// FieldUnits records the physical unit of every record field; nil means
// dimensionless.
var FieldUnits = map[string]*Unit{
	"Z":               nil,
	"A":               nil,
	"symbol":          nil,
	"mass_excess":     &KeV,
	"mass_excess_err": &KeV,
}

// AtomicMassUnitMeV is the energy equivalent of the atomic mass unit
// (CODATA 2018).
const AtomicMassUnitMeV = 931.49410242

// ParseUnit accepts eV, keV, MeV or GeV, ignoring case.
func ParseUnit(s string) (Unit, error) {
	for _, u := range []Unit{EV, KeV, MeV, GeV} {
		if strings.EqualFold(s, u.Name) {
			return u, nil
		}
	}
	return Unit{}, fmt.Errorf("%w: unsupported energy unit %q", errkind.ErrFormat, s)
}

// Convert expresses v, given in from, in u.
func (u Unit) Convert(v float64, from Unit) float64 {
	return v * from.eV / u.eV
}

func (u Unit) String() string {
	return u.Name
}
