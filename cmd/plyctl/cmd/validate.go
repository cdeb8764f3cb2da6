/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ssargent/plyfile/pkg/ply"
)

// validation is the outcome for one input of validate
type validation struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Rows  int    `json:"rows,omitempty"`
	Error string `json:"error,omitempty"`
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <input>...",
	Short: "Check that polygon files are readable",
	Long: `Read the header and the content of every input and report the first
problem found in each. The command fails when at least one input is invalid.

Examples:
  plyctl validate bunny.ply
  plyctl validate scans/*.ply --jobs 8 -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := envFrom(cmd)
		jobs, _ := cmd.Flags().GetInt("jobs")

		results := make([]validation, len(args))
		g := new(errgroup.Group)
		g.SetLimit(max(jobs, 1))
		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				results[i] = validation{Path: path}
				f, err := readFile(e, path)
				if err != nil {
					results[i].Error = err.Error()
					return nil
				}
				results[i].Valid = true
				results[i].Rows = ply.Describe(f).Rows()
				return nil
			})
		}
		// Failures are collected per file, the group never returns one.
		_ = g.Wait()

		failed := 0
		for _, r := range results {
			if !r.Valid {
				failed++
			}
		}

		if e.format == "json" {
			if err := printJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				if r.Valid {
					cmd.Printf("OK    %s (%d rows)\n", r.Path, r.Rows)
				} else {
					cmd.Printf("FAIL  %s: %s\n", r.Path, r.Error)
				}
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files are invalid", failed, len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Int("jobs", 4, "Number of files checked concurrently")
}
