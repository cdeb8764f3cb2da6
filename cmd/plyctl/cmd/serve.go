/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/plyfile/pkg/api"
	"github.com/ssargent/plyfile/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Serve the archive over a REST API until interrupted.

Port, bind address and API key come from the configuration and can be
overridden with flags. When the configuration has no API key yet, a key is
generated for this run only and printed.

Examples:
  plyctl serve
  plyctl serve --port 9000 --bind 0.0.0.0 --api-key=mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := envFrom(cmd)
		cfg := e.cfg
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if key, _ := cmd.Flags().GetString("api-key"); key != "" {
			cfg.Security.APIKey = key
		}
		if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
			key, err := config.GenerateSecureKey(32)
			if err != nil {
				return err
			}
			cfg.Security.APIKey = key
			cmd.Printf("No API key configured, using a temporary one: %s\n", key)
		}
		if cfg.Port < 1 || cfg.Port > 65535 {
			return fmt.Errorf("port out of range: %d", cfg.Port)
		}

		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}
		store, err := openArchive(e)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmd.Printf("Serving archive %s on %s:%d\n", cfg.DataDir, cfg.Bind, cfg.Port)
		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, store, api.ServerConfig{
			Port:   cfg.Port,
			Bind:   cfg.Bind,
			APIKey: cfg.Security.APIKey,
		}, api.WithLogger(e.logger))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind (overrides config)")
	serveCmd.Flags().String("api-key", "", "API key for authentication (overrides config)")
}
