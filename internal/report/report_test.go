package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/user/skygp_go/internal/analysis"
	"github.com/user/skygp_go/internal/emulator"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleTrainingSet() *analysis.TrainingSet {
	return &analysis.TrainingSet{
		Codes:          []int{1, 2, 3},
		ParameterNames: []string{"t0", "x3"},
		Inputs: mat.NewDense(3, 2, []float64{
			-1800, 0.1,
			-1750, 0.2,
			-1700, 0.3,
		}),
		Energies: []float64{20, 40, 60, 80},
		Outputs: mat.NewDense(3, 4, []float64{
			1.1, 1.2, 1.3, 1.4,
			1.0, 1.1, 1.2, math.Inf(1),
			0.9, 1.0, 1.1, 1.2,
		}),
	}
}

func TestCreateDoubleRatioPlot(t *testing.T) {
	img, err := CreateDoubleRatioPlot(sampleTrainingSet())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = CreateDoubleRatioPlot(&analysis.TrainingSet{})
	assert.Error(t, err)
}

func TestCreateTrainingHeatmap(t *testing.T) {
	img, err := CreateTrainingHeatmap(sampleTrainingSet())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	flat := sampleTrainingSet()
	flat.Outputs = mat.NewDense(3, 4, nil)
	img, err = CreateTrainingHeatmap(flat)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = CreateTrainingHeatmap(nil)
	assert.Error(t, err)
}

func TestCreateTrainingSlicePlot(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		2, 0,
		0, 1,
		3, 0,
		1, 1,
	})
	y := mat.NewDense(4, 1, []float64{4, 0, 9, 1})
	gp := emulator.NewGaussianProcess()
	require.NoError(t, gp.Fit(x, y))

	img, err := CreateTrainingSlicePlot(x, y, gp, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = CreateTrainingSlicePlot(x, y, gp, 2)
	assert.Error(t, err)

	_, err = CreateTrainingSlicePlot(x, y, emulator.NewGaussianProcess(), 0)
	assert.ErrorIs(t, err, emulator.ErrNotFitted)
}

func TestIndexTicks(t *testing.T) {
	ticks := indexTicks(4, func(i int) string { return string(rune('a' + i)) })
	require.Len(t, ticks, 4)
	assert.Equal(t, "d", ticks[3].Label)

	ticks = indexTicks(25, func(int) string { return "" })
	assert.Equal(t, 24.0, ticks[len(ticks)-1].Value)
	assert.Equal(t, 2.0, ticks[1].Value)
}

func TestBuildPDFReport(t *testing.T) {
	ts := sampleTrainingSet()
	ratio, err := CreateDoubleRatioPlot(ts)
	require.NoError(t, err)
	heat, err := CreateTrainingHeatmap(ts)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.pdf")
	plots := map[string][]byte{PlotDoubleRatio: ratio, PlotHeatmap: heat}
	require.NoError(t, BuildPDFReport(path, "Ca48+Ni64 / Ca40+Ni58", ts, analysis.Summarize(ts), plots))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	assert.Error(t, BuildPDFReport(path, "x", nil, nil, nil))
}
