package isotope

import (
	"fmt"
	"strings"
)

type ameRow struct {
	cc        string
	nz, n, z  int
	a         int
	el        string
	origin    string
	me, meErr string
}

// ameLine lays a row out the way mass16.txt does: fixed widths, numbers
// right aligned, so the splitter finds the seventeen AME2016 columns. The
// binding energy, beta decay and atomic mass columns are filled from A;
// even A rows carry the "*" of a beta decay that cannot be computed.
func ameLine(r ameRow) string {
	beta, betaErr := "782.347", "0.000"
	if r.a%2 == 0 {
		beta, betaErr = "*", ""
	}
	return fmt.Sprintf("%1s%3d%5d%5d%5d %-3s%-4s %13s%11s%11s%9s %-2s%11s%9s %3d %12s%11s",
		r.cc, r.nz, r.n, r.z, r.a, r.el, r.origin, r.me, r.meErr,
		"8551.256", "0.012", "B-", beta, betaErr,
		r.a, fmt.Sprintf("%012.5f", 7.5*float64(r.a)), "0.00049")
}

var ameHeader = []string{
	"1    a0dsskgw                A T O M I C   M A S S   A D J U S T M E N T",
	"0   Values in keV; # marks estimated values",
	"    Legend continues here",
	"0  N-Z    N    Z   A  EL    O     MASS EXCESS   UNC",
	"                                     (keV)",
}

var ameRows = []ameRow{
	{"0", 1, 1, 0, 1, "n", "", "8071.31713", "0.00046"},
	{"0", -1, 0, 1, 1, "H", "", "7288.97061", "0.00009"},
	{" ", 0, 1, 1, 2, "H", "", "13135.72176", "0.00011"},
	{"0", 0, 20, 20, 40, "Ca", "", "-34846.275", "0.021"},
	{" ", 8, 28, 20, 48, "Ca", "", "-44224.876", "0.106"},
	{"0", 8, 36, 28, 64, "Ni", "x", "-67099.0", "0.4"},
	{" ", 59, 172, 113, 285, "Ed", "", "145000#", "400#"},
	{" ", 61, 176, 115, 291, "Ef", "", "171000#", "500#"},
}

func ameLines(rows []ameRow, suffix string) []string {
	lines := append([]string{}, ameHeader...)
	for _, r := range rows {
		lines = append(lines, ameLine(r)+suffix)
	}
	return append(lines, "")
}

func ameText(rows []ameRow, suffix string) string {
	return strings.Join(ameLines(rows, suffix), "\n")
}
