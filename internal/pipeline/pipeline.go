// Package pipeline runs the training-set build end to end: aggregate runs,
// export matrices, fit the emulator and render the report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/user/skygp_go/internal/analysis"
	"github.com/user/skygp_go/internal/config"
	"github.com/user/skygp_go/internal/emulator"
	"github.com/user/skygp_go/internal/errkind"
	"github.com/user/skygp_go/internal/report"
)

// Options select the optional stages. Empty paths skip their stage.
type Options struct {
	OutDir  string
	PDFPath string
	Fit     bool
}

type Result struct {
	BuildID     string
	TrainingSet *analysis.TrainingSet
	Summary     []analysis.EnergySummary
	Model       *emulator.GaussianProcess
	Files       []string
}

// StatusFunc receives human-readable progress messages.
type StatusFunc func(string)

// Run executes the stages in order and stops at the first error.
func Run(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger, status StatusFunc) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if status == nil {
		status = func(string) {}
	}
	res := &Result{BuildID: uuid.NewString()}
	logger = logger.With("comp", "pipeline", "build_id", res.BuildID)

	req, err := cfg.TrainingRequest()
	if err != nil {
		return nil, err
	}
	status(fmt.Sprintf("Building training set from %d runs", len(req.Codes)))
	ts, err := analysis.NewAggregator(logger).Build(ctx, req)
	if err != nil {
		return nil, err
	}
	res.TrainingSet = ts
	res.Summary = analysis.Summarize(ts)
	status(fmt.Sprintf("Training set: %d runs x %d energies", ts.Len(), len(ts.Energies)))

	if opts.OutDir != "" {
		files, err := writeCSVs(opts.OutDir, ts)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, files...)
		status(fmt.Sprintf("Wrote %s", opts.OutDir))
	}

	if opts.Fit {
		status("Fitting emulator")
		gp := emulator.NewGaussianProcess()
		gp.LengthScale = cfg.Emulator.LengthScale
		gp.SignalVariance = cfg.Emulator.SignalVariance
		gp.Noise = cfg.Emulator.Noise
		gp.Optimize = cfg.Emulator.Optimize
		gp.Seed = cfg.Emulator.Seed
		if err := gp.SetRestarts(cfg.Emulator.Restarts); err != nil {
			return nil, err
		}
		if err := gp.Fit(ts.Inputs, ts.Outputs); err != nil {
			return nil, fmt.Errorf("fit emulator: %w", err)
		}
		res.Model = gp
		logger.Info("emulator fitted", "runs", ts.Len(), "outputs", len(ts.Energies),
			"length_scale", gp.LengthScale, "signal_variance", gp.SignalVariance,
			"log_likelihood", gp.LogLikelihood())
	}

	if opts.PDFPath != "" {
		plots := map[string][]byte{}
		if cfg.Report.Plots {
			status("Generating plots")
			if plots, err = renderPlots(ts, res.Model); err != nil {
				return nil, err
			}
		}
		status(fmt.Sprintf("Generating PDF: %s", opts.PDFPath))
		if err := report.BuildPDFReport(opts.PDFPath, cfg.Report.Title, ts, res.Summary, plots); err != nil {
			return nil, fmt.Errorf("%w: write report: %w", errkind.ErrIO, err)
		}
		res.Files = append(res.Files, opts.PDFPath)
	}

	logger.Info("pipeline finished", "files", len(res.Files))
	return res, nil
}

func renderPlots(ts *analysis.TrainingSet, model *emulator.GaussianProcess) (map[string][]byte, error) {
	plots := make(map[string][]byte, 3)
	img, err := report.CreateDoubleRatioPlot(ts)
	if err != nil {
		return nil, fmt.Errorf("double ratio plot: %w", err)
	}
	plots[report.PlotDoubleRatio] = img

	if img, err = report.CreateTrainingHeatmap(ts); err != nil {
		return nil, fmt.Errorf("heatmap: %w", err)
	}
	plots[report.PlotHeatmap] = img

	if model != nil {
		if img, err = report.CreateTrainingSlicePlot(ts.Inputs, ts.Outputs, model, 0); err != nil {
			return nil, fmt.Errorf("training slice plot: %w", err)
		}
		plots[report.PlotTrainingSlice] = img
	}
	return plots, nil
}

func writeCSVs(dir string, ts *analysis.TrainingSet) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", errkind.ErrIO, err)
	}
	writers := []struct {
		name  string
		write func(*os.File) error
	}{
		{"inputs.csv", func(f *os.File) error { return analysis.WriteInputsCSV(f, ts) }},
		{"outputs.csv", func(f *os.File) error { return analysis.WriteOutputsCSV(f, ts) }},
	}
	var files []string
	for _, w := range writers {
		path := filepath.Join(dir, w.name)
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errkind.ErrIO, err)
		}
		err = w.write(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("%w: write %s: %w", errkind.ErrIO, path, err)
		}
		files = append(files, path)
	}
	return files, nil
}
