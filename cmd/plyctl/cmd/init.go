/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/plyfile/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create a configuration file with a generated API key.

The file is written to --config, or to the default location when the flag
is not given. An existing file is kept unless --force is set.

Examples:
  plyctl init
  plyctl init --config ./plyctl.toml --data-dir /var/lib/plyctl`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := envFrom(cmd)
		force, _ := cmd.Flags().GetBool("force")

		if config.ConfigExists(e.configPath) && !force {
			cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", e.configPath)
			return nil
		}

		cfg, err := config.BootstrapConfig(e.configPath, e.cfg.DataDir)
		if err != nil {
			return err
		}

		cmd.Printf("Configuration written to %s\n", e.configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("API key: %s\n", cfg.Security.APIKey)
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  plyctl serve --config %s\n", e.configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}
