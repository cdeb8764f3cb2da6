/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Retrieve a polygon file from the archive",
	Long: `Write an archived polygon file to stdout or to --output.

The stored bytes are returned unchanged unless --to asks for another encoding.

Examples:
  plyctl get 2fX4bq1xJ0ZKcIOoCmw0IOjLGaS --output bunny.ply
  plyctl get 2fX4bq1xJ0ZKcIOoCmw0IOjLGaS --to ascii`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := envFrom(cmd)
		output, _ := cmd.Flags().GetString("output")
		to, _ := cmd.Flags().GetString("to")

		store, err := openArchive(e)
		if err != nil {
			return err
		}
		defer store.Close()

		w := cmd.OutOrStdout()
		if output != "" {
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer file.Close()
			w = file
		}

		if to == "" {
			data, err := store.Raw(args[0])
			if err != nil {
				return err
			}
			if _, err := w.Write(data); err != nil {
				return fmt.Errorf("failed to write document: %w", err)
			}
			return nil
		}

		format, err := parseFormat(e, to)
		if err != nil {
			return err
		}
		f, err := store.Get(args[0])
		if err != nil {
			return err
		}
		f.Format = format
		return f.Encode(w)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().String("output", "", "Write the document to this file instead of stdout")
	getCmd.Flags().String("to", "", "Re-encode the document: ascii, binary_little_endian or binary_big_endian")
}
