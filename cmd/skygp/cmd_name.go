package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/skygp_go/internal/collision"
)

var (
	nameSkyrme   int
	nameEnergy   float64
	nameImpact   float64
	nameImQMD    bool
	nameTemplate bool

	nameCmd = &cobra.Command{
		Use:   "name <projectile> <target>",
		Short: "Print the readable or run-directory name of a collision system",
		Args:  cobra.ExactArgs(2),
		RunE:  runName,
	}
)

func init() {
	nameCmd.Flags().IntVar(&nameSkyrme, "skyrme", 0, "skyrme parameter code")
	nameCmd.Flags().Float64Var(&nameEnergy, "energy", 0, "beam energy in MeV/u")
	nameCmd.Flags().Float64Var(&nameImpact, "impact", 0, "impact parameter in fm")
	nameCmd.Flags().BoolVar(&nameImQMD, "imqmd", false, "format as an ImQMD run directory")
	nameCmd.Flags().BoolVar(&nameTemplate, "template", false, "print a run template with a %03d code slot")
}

func runName(cmd *cobra.Command, args []string) error {
	var opts []collision.Option
	if cmd.Flags().Changed("skyrme") {
		opts = append(opts, collision.WithSkyrme(nameSkyrme))
	}
	if cmd.Flags().Changed("energy") {
		opts = append(opts, collision.WithEnergy(nameEnergy))
	}
	if cmd.Flags().Changed("impact") {
		opts = append(opts, collision.WithImpactParameter(nameImpact))
	}
	sys, err := collision.Parse(args[0], args[1], opts...)
	if err != nil {
		return err
	}
	if nameTemplate {
		fmt.Fprintln(cmd.OutOrStdout(), sys.RunTemplate(nameImQMD))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), sys.Name(nameImQMD))
	return nil
}
