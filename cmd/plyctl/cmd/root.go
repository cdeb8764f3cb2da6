/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/plyfile/pkg/api"
	"github.com/ssargent/plyfile/pkg/archive"
	"github.com/ssargent/plyfile/pkg/config"
	"github.com/ssargent/plyfile/pkg/di"
	"github.com/ssargent/plyfile/pkg/logging"
)

var container *di.Container

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

type envKey struct{}

// env is the state prepared for every subcommand
type env struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	format     string
}

func envFrom(cmd *cobra.Command) *env {
	if e, ok := cmd.Context().Value(envKey{}).(*env); ok {
		return e
	}
	return &env{cfg: config.DefaultConfig(), logger: logging.Discard(), format: "table"}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plyctl",
	Short: "plyctl - polygon file toolkit",
	Long: `plyctl inspects, validates and converts polygon files (PLY) between the
ascii, binary_little_endian and binary_big_endian encodings, and keeps them
in a local archive that can be served over a REST API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		logLevel, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("format")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		cfg := config.DefaultConfig()
		if config.ConfigExists(configPath) {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if format != "table" && format != "json" {
			return fmt.Errorf("unknown output format: %s", format)
		}

		logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(context.WithValue(ctx, envKey{}, &env{
			cfg:        cfg,
			configPath: configPath,
			logger:     logger,
			format:     format,
		}))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for the archive (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().StringP("format", "o", "table", "Output format: table or json")
}

// openArchive opens the archive under the configured data directory
func openArchive(e *env) (api.ArchiveStore, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	dir := filepath.Join(e.cfg.DataDir, "archive")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return container.GetArchiveFactory().OpenArchive(archive.Options{
		Dir:              dir,
		CompressionLevel: e.cfg.Archive.CompressionLevel,
		Logger:           e.logger,
	})
}
