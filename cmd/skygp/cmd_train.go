package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/skygp_go/internal/pipeline"
)

var (
	trainOut string
	trainPDF string
	trainFit bool

	trainCmd = &cobra.Command{
		Use:   "train",
		Short: "Build the double-ratio training set from the configured runs",
		Args:  cobra.NoArgs,
		RunE:  runTrain,
	}
)

func init() {
	trainCmd.Flags().StringVar(&trainOut, "out", "", "directory for inputs.csv and outputs.csv")
	trainCmd.Flags().StringVar(&trainPDF, "pdf", "", "write a PDF report to this path (default report.pdf from config)")
	trainCmd.Flags().BoolVar(&trainFit, "fit", false, "fit the Gaussian-process emulator")
}

func runTrain(cmd *cobra.Command, _ []string) error {
	pdfPath := trainPDF
	if pdfPath == "" {
		pdfPath = cfg.Report.PDF
	}
	opts := pipeline.Options{OutDir: trainOut, PDFPath: pdfPath, Fit: trainFit}
	status := func(msg string) { logger.Info(msg) }

	res, err := pipeline.Run(cmd.Context(), cfg, opts, logger, status)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "build %s: %d runs x %d energies\n", res.BuildID, res.TrainingSet.Len(), len(res.TrainingSet.Energies))
	for _, es := range res.Summary {
		fmt.Fprintf(out, "  E=%g mean=%.4f sd=%.4f\n", es.Energy, es.Mean, es.StdDev)
	}
	for _, f := range res.Files {
		fmt.Fprintln(out, "wrote", f)
	}
	return nil
}
