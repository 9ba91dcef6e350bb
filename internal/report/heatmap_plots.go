package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"

	"github.com/user/skygp_go/internal/analysis"
)

// trainingGrid exposes the output matrix as a heat map grid. Columns are
// energies, rows are runs in training-set order.
type trainingGrid struct {
	ts *analysis.TrainingSet
}

func (g trainingGrid) Dims() (c, r int) { return len(g.ts.Energies), g.ts.Len() }

func (g trainingGrid) Z(c, r int) float64 {
	v := g.ts.Outputs.At(r, c)
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func (g trainingGrid) X(c int) float64 { return float64(c) }
func (g trainingGrid) Y(r int) float64 { return float64(r) }

// CreateTrainingHeatmap draws the output matrix with one row per run and one
// column per energy. Non-finite ratios are drawn gray.
func CreateTrainingHeatmap(ts *analysis.TrainingSet) ([]byte, error) {
	if ts == nil || ts.Len() == 0 || len(ts.Energies) == 0 {
		return nil, errors.New("no training data for heatmap")
	}
	grid := trainingGrid{ts: ts}

	lo, hi := math.Inf(1), math.Inf(-1)
	cols, rows := grid.Dims()
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			if v := grid.Z(c, r); !math.IsNaN(v) {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if lo == hi {
		hi = lo + 1
	}

	hm := plotter.NewHeatMap(grid, moreland.ExtendedBlackBody().Palette(255))
	hm.Min = lo
	hm.Max = hi
	hm.NaN = color.Gray{Y: 200}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Double ratio, %d runs x %d energies (range %.3g to %.3g)", rows, cols, lo, hi)
	p.X.Label.Text = "E_cm (MeV)"
	p.Y.Label.Text = "Parameter code"

	p.X.Tick.Marker = plot.ConstantTicks(indexTicks(cols, func(i int) string {
		return fmt.Sprintf("%g", ts.Energies[i])
	}))
	p.Y.Tick.Marker = plot.ConstantTicks(indexTicks(rows, func(i int) string {
		return fmt.Sprintf("%03d", ts.Codes[i])
	}))
	p.X.Min = -0.5
	p.X.Max = float64(cols) - 0.5
	p.Y.Min = -0.5
	p.Y.Max = float64(rows) - 0.5
	p.Add(hm)

	return renderPNG(p, 1000, 500)
}

// indexTicks labels at most about ten evenly spaced grid indices.
func indexTicks(n int, label func(int) string) []plot.Tick {
	step := max(1, n/10)
	var ticks []plot.Tick
	for i := 0; i < n; i += step {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: label(i)})
	}
	if last := n - 1; last > 0 && last%step != 0 {
		ticks = append(ticks, plot.Tick{Value: float64(last), Label: label(last)})
	}
	return ticks
}
