package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/skygp_go/internal/errkind"
	"github.com/user/skygp_go/internal/fixedwidth"
)

var (
	keepPadding bool
	skipLines   int

	splitCmd = &cobra.Command{
		Use:   "split <file>",
		Short: "Infer fixed-width columns and print the fields as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runSplit,
	}
)

func init() {
	splitCmd.Flags().BoolVar(&keepPadding, "keep-padding", false, "keep the whitespace around each field")
	splitCmd.Flags().IntVar(&skipLines, "skip", 0, "header lines to skip before inferring columns")
}

func runSplit(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", errkind.ErrIO, err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\n")
	if skipLines < 0 || skipLines >= len(lines) {
		return fmt.Errorf("%w: --skip %d leaves no lines", errkind.ErrFormat, skipLines)
	}

	res, err := fixedwidth.Split(lines[skipLines:])
	if err != nil {
		return err
	}
	logger.Debug("columns inferred", "file", args[0], "fields", res.NumFields())

	w := csv.NewWriter(cmd.OutOrStdout())
	for _, row := range res.Rows {
		if !keepPadding {
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
