package parser

import "sort"

// RunColumns is the fixed column order of a simulation run output file. The
// files carry no header row.
var RunColumns = []string{
	"beam_E", "imp_param", "ene_cm",
	"yield_p", "yield_p_err", "yield_n", "yield_n_err",
	"single_ratio", "single_ratio_err",
}

// EnergyGridRow is one line of a run output file.
type EnergyGridRow struct {
	BeamEnergy     float64
	ImpactParam    float64
	EnergyCM       float64
	YieldP         float64
	YieldPErr      float64
	YieldN         float64
	YieldNErr      float64
	SingleRatio    float64
	SingleRatioErr float64
}

// RunOutput holds the rows of one run output file in file order, which is
// increasing center-of-mass energy.
type RunOutput struct {
	Path string
	Rows []EnergyGridRow
}

// Window returns the energies and single ratios of the rows with
// lo <= ene_cm <= hi, in file order.
func (r *RunOutput) Window(lo, hi float64) (energies, ratios []float64) {
	for _, row := range r.Rows {
		if row.EnergyCM >= lo && row.EnergyCM <= hi {
			energies = append(energies, row.EnergyCM)
			ratios = append(ratios, row.SingleRatio)
		}
	}
	return energies, ratios
}

// ParameterIndex maps a parameter code to the model parameters of that run.
type ParameterIndex struct {
	Path  string
	Names []string
	rows  map[int][]float64
}

// NewParameterIndex returns an empty index with the given column names.
func NewParameterIndex(path string, names []string) *ParameterIndex {
	return &ParameterIndex{Path: path, Names: names, rows: make(map[int][]float64)}
}

// Row returns the parameters of code, in Names order.
func (p *ParameterIndex) Row(code int) ([]float64, bool) {
	row, ok := p.rows[code]
	return row, ok
}

// Codes returns every code in the index, ascending.
func (p *ParameterIndex) Codes() []int {
	codes := make([]int, 0, len(p.rows))
	for c := range p.rows {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}
