/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// putCmd represents the put command
var putCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Store a polygon file in the archive",
	Long: `Read a polygon file and store it in the archive under a new id.

The file is stored in the encoding it was read in.

Example:
  plyctl put bunny.ply`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := envFrom(cmd)

		f, err := readFile(e, args[0])
		if err != nil {
			return err
		}

		store, err := openArchive(e)
		if err != nil {
			return err
		}
		defer store.Close()

		entry, err := store.Put(f)
		if err != nil {
			return err
		}
		return printEntry(cmd, e, entry)
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}
