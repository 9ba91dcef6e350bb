// Package analysis merges parameter-indexed simulation runs into training
// matrices for the emulator.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/user/skygp_go/internal/errkind"
	"github.com/user/skygp_go/internal/parser"
)

const codePlaceholder = "%03d"

// ValidateTemplate checks that tmpl has exactly one %03d and no other verb.
func ValidateTemplate(tmpl string) error {
	if strings.Count(tmpl, "%") != 1 || strings.Count(tmpl, codePlaceholder) != 1 {
		return fmt.Errorf("%w: %q should contain exactly one placeholder %q", errkind.ErrFormat, tmpl, codePlaceholder)
	}
	return nil
}

// ExpandTemplate substitutes a zero-padded code into a validated template.
func ExpandTemplate(tmpl string, code int) string {
	return strings.Replace(tmpl, codePlaceholder, fmt.Sprintf(codePlaceholder, code), 1)
}

// Aggregator builds TrainingSets from run output files.
type Aggregator struct {
	logger *slog.Logger
}

func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger.With("comp", "analysis.aggregator")}
}

// Build reads the numerator and denominator output of every code, divides
// their single ratios at matching energies, and pairs the result with the
// code's parameters. Every code must sample the same energies as the first;
// any failure aborts the whole build.
func (a *Aggregator) Build(ctx context.Context, req Request) (*TrainingSet, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	params, err := parser.ReadParameterIndex(req.ParamIndexPath)
	if err != nil {
		return nil, err
	}

	var grid []float64
	firstCode := 0
	outputs := make([][]float64, 0, len(req.Codes))
	for _, code := range req.Codes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		energies, ratio, err := a.doubleRatio(req, code)
		if err != nil {
			return nil, err
		}
		if grid == nil {
			if len(energies) == 0 {
				return nil, fmt.Errorf("%w: code %03d: no energies within [%g, %g]",
					errkind.ErrConsistency, code, req.Energy.Min, req.Energy.Max)
			}
			grid, firstCode = energies, code
		} else if !floats.Equal(grid, energies) {
			return nil, fmt.Errorf("%w: code %03d: energy grid %v differs from %v of code %03d",
				errkind.ErrConsistency, code, energies, grid, firstCode)
		}
		outputs = append(outputs, ratio)
		a.logger.Debug("run processed", "code", code, "points", len(ratio))
	}

	inputs := mat.NewDense(len(req.Codes), len(params.Names), nil)
	for i, code := range req.Codes {
		row, ok := params.Row(code)
		if !ok {
			return nil, fmt.Errorf("%w: code %03d not in parameter index %s", errkind.ErrNotFound, code, params.Path)
		}
		inputs.SetRow(i, row)
	}
	out := mat.NewDense(len(req.Codes), len(grid), nil)
	for i, ratio := range outputs {
		out.SetRow(i, ratio)
	}

	a.logger.Info("training set built", "runs", len(req.Codes), "parameters", len(params.Names), "energies", len(grid))
	return &TrainingSet{
		Codes:          append([]int(nil), req.Codes...),
		ParameterNames: append([]string(nil), params.Names...),
		Inputs:         inputs,
		Energies:       grid,
		Outputs:        out,
	}, nil
}

func validateRequest(req Request) error {
	for _, tmpl := range []string{req.NumeratorTemplate, req.DenominatorTemplate} {
		if err := ValidateTemplate(tmpl); err != nil {
			return err
		}
	}
	if len(req.Codes) == 0 {
		return fmt.Errorf("%w: no parameter codes given", errkind.ErrFormat)
	}
	for _, code := range req.Codes {
		if code < 0 {
			return fmt.Errorf("%w: negative parameter code %d", errkind.ErrFormat, code)
		}
	}
	if req.Energy.Min > req.Energy.Max {
		return fmt.Errorf("%w: energy range [%g, %g] is empty", errkind.ErrFormat, req.Energy.Min, req.Energy.Max)
	}
	return nil
}

// doubleRatio returns the energies shared by the numerator and denominator
// runs of code and the quotient of their single ratios.
func (a *Aggregator) doubleRatio(req Request, code int) ([]float64, []float64, error) {
	numPath := ExpandTemplate(req.NumeratorTemplate, code)
	denPath := ExpandTemplate(req.DenominatorTemplate, code)

	num, err := parser.ReadRunOutput(numPath)
	if err != nil {
		return nil, nil, fmt.Errorf("code %03d: %w", code, err)
	}
	den, err := parser.ReadRunOutput(denPath)
	if err != nil {
		return nil, nil, fmt.Errorf("code %03d: %w", code, err)
	}

	numE, numR := num.Window(req.Energy.Min, req.Energy.Max)
	denE, denR := den.Window(req.Energy.Min, req.Energy.Max)
	if !floats.Equal(numE, denE) {
		return nil, nil, fmt.Errorf("%w: code %03d: %s and %s sample different energies (%v vs %v)",
			errkind.ErrConsistency, code, numPath, denPath, numE, denE)
	}

	ratio := make([]float64, len(numR))
	if len(ratio) > 0 {
		floats.DivTo(ratio, numR, denR)
	}
	return numE, ratio, nil
}
