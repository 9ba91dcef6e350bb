package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Summarize returns, for every energy of ts, the mean, population standard
// deviation and range of the double ratio over all runs.
func Summarize(ts *TrainingSet) []EnergySummary {
	if ts == nil || ts.Len() == 0 {
		return nil
	}
	out := make([]EnergySummary, len(ts.Energies))
	col := make([]float64, ts.Len())
	for j, e := range ts.Energies {
		mat.Col(col, j, ts.Outputs)
		mean, std := stat.PopMeanStdDev(col, nil)
		out[j] = EnergySummary{
			Energy: e,
			Mean:   mean,
			StdDev: std,
			Min:    floats.Min(col),
			Max:    floats.Max(col),
		}
	}
	return out
}
