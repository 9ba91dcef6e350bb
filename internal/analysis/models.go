package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// EnergyRange selects run output rows with Min <= ene_cm <= Max.
type EnergyRange struct {
	Min float64
	Max float64
}

// Request describes one training-set build. The path templates contain a
// single %03d that receives the parameter code.
type Request struct {
	ParamIndexPath      string
	Codes               []int
	NumeratorTemplate   string
	DenominatorTemplate string
	Energy              EnergyRange
}

// TrainingSet pairs model parameters with the double ratio they produce.
// Row i of Inputs and Outputs both belong to Codes[i]; column j of Outputs
// belongs to Energies[j].
type TrainingSet struct {
	Codes          []int
	ParameterNames []string
	Inputs         *mat.Dense
	Energies       []float64
	Outputs        *mat.Dense
}

// Len is the number of runs in the set.
func (ts *TrainingSet) Len() int {
	return len(ts.Codes)
}

// OutputLabels names the output columns after their energies.
func (ts *TrainingSet) OutputLabels() []string {
	labels := make([]string, len(ts.Energies))
	for i, e := range ts.Energies {
		labels[i] = fmt.Sprintf("ene_cm_%03d", int(e))
	}
	return labels
}

// EnergySummary describes the spread of the double ratio across runs at one
// energy.
type EnergySummary struct {
	Energy float64
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}
