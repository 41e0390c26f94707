package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/trigramdb/internal/config"
	"github.com/iishyfishyy/trigramdb/internal/ui"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the trigramdb configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}

			exists, err := config.Exists(path)
			if err != nil {
				return err
			}
			if exists && !force {
				ui.ShowWarning(fmt.Sprintf("Configuration already exists at %s (use --force to overwrite)", path))
				return nil
			}

			if err := config.Save(path, config.Default()); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			ui.ShowSuccess(fmt.Sprintf("Configuration saved to %s", path))
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}

			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}

			exists, _ := config.Exists(path)
			if exists {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "# defaults (%s not found)\n", path)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)

	return configCmd
}
