/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/plyfile/pkg/mesh"
	"github.com/ssargent/plyfile/pkg/ply"
)

// meshStats is the geometry report printed by info --stats
type meshStats struct {
	Vertices int        `json:"vertices"`
	Faces    int        `json:"faces"`
	Min      [3]float32 `json:"min"`
	Max      [3]float32 `json:"max"`
	Area     float32    `json:"surface_area"`
	Problem  string     `json:"problem,omitempty"`
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show the header of a polygon file",
	Long: `Show the format, comments, elements and properties of a polygon file.

The content is read as well, so a file that prints here is fully readable.
With --stats the vertex and face elements are also read as a mesh and the
bounding box and surface area are reported, along with the first face
index that points past the vertex list.

Examples:
  plyctl info bunny.ply
  plyctl info bunny.ply --stats -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := envFrom(cmd)
		withStats, _ := cmd.Flags().GetBool("stats")

		f, err := readFile(e, args[0])
		if err != nil {
			return err
		}
		summary := ply.Describe(f)

		if !withStats {
			return printSummary(cmd, e, args[0], summary)
		}

		m, err := mesh.FromFile(f)
		if err != nil {
			return fmt.Errorf("cannot compute stats: %w", err)
		}
		lo, hi := m.Bounds()
		stats := meshStats{
			Vertices: len(m.Positions),
			Faces:    len(m.Faces),
			Min:      lo,
			Max:      hi,
			Area:     m.SurfaceArea(),
		}
		if err := m.Validate(); err != nil {
			stats.Problem = err.Error()
		}

		if e.format == "json" {
			return printJSON(cmd.OutOrStdout(), struct {
				Path string `json:"path"`
				ply.Summary
				Stats meshStats `json:"stats"`
			}{args[0], summary, stats})
		}
		if err := printSummary(cmd, e, args[0], summary); err != nil {
			return err
		}
		cmd.Printf("\nVertices: %d\n", stats.Vertices)
		cmd.Printf("Faces:    %d\n", stats.Faces)
		cmd.Printf("Bounds:   (%g, %g, %g) - (%g, %g, %g)\n", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
		cmd.Printf("Area:     %g\n", stats.Area)
		if stats.Problem != "" {
			cmd.Printf("Problem:  %s\n", stats.Problem)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().Bool("stats", false, "Report mesh bounds and surface area")
}
