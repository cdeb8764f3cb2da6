/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived polygon files",
	Long: `List the documents of the archive, oldest first.

Examples:
  plyctl list
  plyctl list -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := envFrom(cmd)

		store, err := openArchive(e)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List()
		if err != nil {
			return err
		}
		return printEntries(cmd, e, entries)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
