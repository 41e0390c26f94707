package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/trigramdb/internal/logger"
	"github.com/iishyfishyy/trigramdb/internal/ui"
)

var (
	// version is set by goreleaser at build time
	version = "dev"

	// CLI flags
	debug      bool
	configPath string
	storePath  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trigramdb",
		Short:         "Trigram text similarity search",
		Long:          "trigramdb stores passages as trigram models and ranks them against a query",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetDebug(debug)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.trigramdb/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Store file, overrides storage.path")

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newExploreCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}
