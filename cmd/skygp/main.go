package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/skygp_go/internal/config"
	"github.com/user/skygp_go/internal/isotope"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "skygp",
		Short: "Mass table lookups and emulator training sets for heavy-ion simulations",
		Long: `skygp parses the atomic mass evaluation table, answers nuclide mass
queries, and merges transport-model runs into training sets for a
Gaussian-process emulator.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(massCmd, lookupCmd, refreshCmd, splitCmd, trainCmd, nameCmd)
}

// setup loads the config and logger. The default config path may be absent;
// an explicit --config must exist.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	switch {
	case err == nil:
		cfg = loaded
	case !cmd.Flags().Changed("config") && errors.Is(err, fs.ErrNotExist):
		def := config.Default()
		cfg = &def
	default:
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err = cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func newStore() *isotope.Store {
	fetcher := isotope.NewHTTPFetcher(cfg.MassTable.Timeout, cfg.MassTable.UserAgent)
	return isotope.NewStore(cfg.StoreConfig(), fetcher, logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
