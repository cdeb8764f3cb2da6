/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ssargent/plyfile/pkg/ply"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <input>...",
	Short: "Re-encode polygon files",
	Long: `Read one or more polygon files and write them in another encoding.

Without --output each input is written next to itself (or into --out-dir)
as <name>.<encoding>.ply. Inputs are converted concurrently, at most --jobs
at a time. Without --to the writer format of the configuration is used.

Examples:
  plyctl convert bunny.ply --to ascii --output bunny.txt.ply
  plyctl convert scans/*.ply --to binary_big_endian --out-dir converted --jobs 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := envFrom(cmd)
		to, _ := cmd.Flags().GetString("to")
		output, _ := cmd.Flags().GetString("output")
		outDir, _ := cmd.Flags().GetString("out-dir")
		jobs, _ := cmd.Flags().GetInt("jobs")

		format, err := parseFormat(e, to)
		if err != nil {
			return err
		}
		if output != "" && outDir != "" {
			return fmt.Errorf("--output and --out-dir are mutually exclusive")
		}
		if output != "" && len(args) > 1 {
			return fmt.Errorf("--output needs exactly one input, got %d", len(args))
		}

		targets := make([]string, len(args))
		seen := make(map[string]string, len(args))
		for i, input := range args {
			targets[i] = output
			if targets[i] == "" {
				targets[i] = convertedName(input, outDir, format)
			}
			key := filepath.Clean(targets[i])
			if prev, ok := seen[key]; ok {
				return fmt.Errorf("%s and %s would both be written to %s", prev, input, targets[i])
			}
			seen[key] = input
		}

		if outDir != "" {
			if err := os.MkdirAll(outDir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		g := new(errgroup.Group)
		g.SetLimit(max(jobs, 1))
		for i := range args {
			input, target := args[i], targets[i]
			g.Go(func() error {
				return convertFile(e, input, target, format)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i := range args {
			cmd.Printf("%s -> %s\n", args[i], targets[i])
		}
		return nil
	},
}

// convertFile reads input and saves it to target in format
func convertFile(e *env, input, target string, format ply.Format) error {
	f, err := readFile(e, input)
	if err != nil {
		return err
	}
	f.Format = format
	if len(f.Comments) == 0 && e.cfg.Writer.Comment != "" {
		f.Comments = append(f.Comments, e.cfg.Writer.Comment)
	}
	if err := f.Save(target); err != nil {
		return err
	}
	e.logger.Debug("file converted", "input", input, "output", target, "format", format.String())
	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().String("to", "", "Target encoding: ascii, binary_little_endian or binary_big_endian")
	convertCmd.Flags().String("output", "", "Output file (single input only)")
	convertCmd.Flags().String("out-dir", "", "Directory receiving the converted files")
	convertCmd.Flags().Int("jobs", 4, "Number of files converted concurrently")
}
