package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/skygp_go/internal/analysis"
	"github.com/user/skygp_go/internal/emulator"
)

// Runs beyond this count are drawn without legend entries.
const maxLegendEntries = 12

var plotColors = []color.Color{
	color.RGBA{R: 255, A: 255},
	color.RGBA{G: 160, A: 255},
	color.RGBA{B: 255, A: 255},
	color.RGBA{R: 255, G: 165, A: 255},
	color.RGBA{R: 128, B: 128, A: 255},
	color.RGBA{G: 128, B: 128, A: 255},
}

// CreateDoubleRatioPlot draws one double-ratio curve per run against
// center-of-mass energy.
func CreateDoubleRatioPlot(ts *analysis.TrainingSet) ([]byte, error) {
	if ts == nil || ts.Len() == 0 || len(ts.Energies) == 0 {
		return nil, errors.New("no training data to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Double ratio (%d runs)", ts.Len())
	p.X.Label.Text = "E_cm (MeV)"
	p.Y.Label.Text = "Double ratio"
	p.Add(plotter.NewGrid())

	for i, code := range ts.Codes {
		pts := make(plotter.XYs, 0, len(ts.Energies))
		for j, e := range ts.Energies {
			v := ts.Outputs.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			pts = append(pts, plotter.XY{X: e, Y: v})
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line for code %03d: %w", code, err)
		}
		line.Color = plotColors[i%len(plotColors)]
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		if ts.Len() <= maxLegendEntries {
			p.Legend.Add(fmt.Sprintf("code %03d", code), line)
		}
	}
	p.Legend.Top = true

	return renderPNG(p, 800, 400)
}

// CreateTrainingSlicePlot compares a fitted model against its training data
// along input column xslice. Training outputs are drawn as points and the
// model's predictions at the same inputs as dashed lines.
func CreateTrainingSlicePlot(x, y *mat.Dense, model emulator.Regressor, xslice int) ([]byte, error) {
	if x == nil || y == nil {
		return nil, errors.New("no training data to plot")
	}
	n, nx := x.Dims()
	yr, ny := y.Dims()
	if n == 0 || yr != n {
		return nil, fmt.Errorf("training data shapes do not match: %d and %d rows", n, yr)
	}
	if xslice < 0 || xslice >= nx {
		return nil, fmt.Errorf("xslice %d out of range [0, %d)", xslice, nx)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x.At(order[a], xslice) < x.At(order[b], xslice)
	})
	xs := mat.NewDense(n, nx, nil)
	ys := mat.NewDense(n, ny, nil)
	for i, src := range order {
		xs.SetRow(i, x.RawRowView(src))
		ys.SetRow(i, y.RawRowView(src))
	}

	pred, err := model.Predict(xs)
	if err != nil {
		return nil, fmt.Errorf("predict training inputs: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Training slice along x%d", xslice)
	p.X.Label.Text = fmt.Sprintf("x%d", xslice)
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	colors := palette.Rainbow(max(ny, 2), palette.Blue, palette.Red, 1, 1, 1).Colors()
	for j := 0; j < ny; j++ {
		truth := make(plotter.XYs, n)
		guess := make(plotter.XYs, n)
		for i := 0; i < n; i++ {
			xv := xs.At(i, xslice)
			truth[i] = plotter.XY{X: xv, Y: ys.At(i, j)}
			guess[i] = plotter.XY{X: xv, Y: pred.At(i, j)}
		}
		c := colors[j]
		if ny == 1 {
			c = colors[1]
		}

		sc, err := plotter.NewScatter(truth)
		if err != nil {
			return nil, fmt.Errorf("failed to create scatter for y%d: %w", j, err)
		}
		sc.GlyphStyle.Color = c
		line, err := plotter.NewLine(guess)
		if err != nil {
			return nil, fmt.Errorf("failed to create line for y%d: %w", j, err)
		}
		line.Color = c
		line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

		p.Add(sc, line)
		if ny <= maxLegendEntries {
			p.Legend.Add(fmt.Sprintf("y%d true", j), sc)
			p.Legend.Add(fmt.Sprintf("y%d pred", j), line)
		}
	}
	p.Legend.Top = true

	return renderPNG(p, 800, 400)
}

func renderPNG(p *plot.Plot, w, h float64) ([]byte, error) {
	writer, err := p.WriterTo(vg.Points(w), vg.Points(h), "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
