package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/skygp_go/internal/isotope"
)

var (
	massUnit   string
	lookupZ    int
	lookupSym  string
	forceFetch bool

	massCmd = &cobra.Command{
		Use:   "mass <notation>...",
		Short: "Print the atomic mass of nuclides such as Ca48 or 208Pb",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMass,
	}
	lookupCmd = &cobra.Command{
		Use:   "lookup",
		Short: "Convert between element symbol and charge number",
		RunE:  runLookup,
	}
	refreshCmd = &cobra.Command{
		Use:   "refresh",
		Short: "Download the mass table if missing (or always with --force) and rebuild it",
		Args:  cobra.NoArgs,
		RunE:  runRefresh,
	}
)

func init() {
	massCmd.Flags().StringVar(&massUnit, "unit", "MeV", "energy unit (eV, keV, MeV, GeV)")

	lookupCmd.Flags().IntVar(&lookupZ, "z", 0, "charge number to look up")
	lookupCmd.Flags().StringVar(&lookupSym, "symbol", "", "element symbol to look up")
	lookupCmd.MarkFlagsMutuallyExclusive("z", "symbol")
	lookupCmd.MarkFlagsOneRequired("z", "symbol")

	refreshCmd.Flags().BoolVar(&forceFetch, "force", false, "download even if a local copy exists")
}

func runMass(cmd *cobra.Command, args []string) error {
	unit, err := isotope.ParseUnit(massUnit)
	if err != nil {
		return err
	}
	resolver, err := newStore().Resolver(cmd.Context())
	if err != nil {
		return err
	}
	for _, notation := range args {
		m, err := resolver.Mass(notation, unit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.6f %s\n", notation, m, unit)
	}
	return nil
}

func runLookup(cmd *cobra.Command, _ []string) error {
	table, err := newStore().Table(cmd.Context())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("z") {
		sym, err := table.SymbolOf(lookupZ)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), sym)
		return nil
	}
	z, err := table.ZOf(lookupSym)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), z)
	return nil
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	store := newStore()
	if err := store.Refresh(cmd.Context(), forceFetch); err != nil {
		return err
	}
	table, err := store.Table(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d nuclides, %d columns, %s\n",
		table.Len(), table.FieldCount(), cfg.MassTable.LocalPath)
	return nil
}
