package analysis

import (
	"encoding/csv"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// WriteInputsCSV writes the parameter matrix with a leading code column.
func WriteInputsCSV(w io.Writer, ts *TrainingSet) error {
	return writeMatrixCSV(w, ts.Codes, ts.ParameterNames, ts.Inputs)
}

// WriteOutputsCSV writes the double-ratio matrix with a leading code column
// and energy-labeled headers.
func WriteOutputsCSV(w io.Writer, ts *TrainingSet) error {
	return writeMatrixCSV(w, ts.Codes, ts.OutputLabels(), ts.Outputs)
}

func writeMatrixCSV(w io.Writer, codes []int, header []string, m *mat.Dense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"code"}, header...)); err != nil {
		return err
	}
	_, cols := m.Dims()
	rec := make([]string, cols+1)
	for i, code := range codes {
		rec[0] = strconv.Itoa(code)
		for j := 0; j < cols; j++ {
			rec[j+1] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
