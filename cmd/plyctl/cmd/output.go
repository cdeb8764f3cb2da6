/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/plyfile/pkg/archive"
	"github.com/ssargent/plyfile/pkg/ply"
)

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printSummary prints the schema of a file
func printSummary(cmd *cobra.Command, e *env, path string, s ply.Summary) error {
	out := cmd.OutOrStdout()
	if e.format == "json" {
		return printJSON(out, struct {
			Path string `json:"path,omitempty"`
			ply.Summary
		}{path, s})
	}

	if path != "" {
		fmt.Fprintf(out, "File:     %s\n", path)
	}
	fmt.Fprintf(out, "Format:   %s %s\n", s.Format, s.Version)
	for _, c := range s.Comments {
		fmt.Fprintf(out, "Comment:  %s\n", c)
	}
	fmt.Fprintf(out, "Rows:     %d\n\n", s.Rows())

	w := newTable(out)
	fmt.Fprintln(w, "ELEMENT\tROWS\tPROPERTY\tKIND\tTYPE")
	for _, el := range s.Elements {
		if len(el.Properties) == 0 {
			fmt.Fprintf(w, "%s\t%d\t-\t-\t-\n", el.Name, el.Rows)
			continue
		}
		for i, p := range el.Properties {
			name, rows := "", ""
			if i == 0 {
				name, rows = el.Name, fmt.Sprint(el.Rows)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, rows, p.Name, p.Kind, propertyType(p))
		}
	}
	return w.Flush()
}

func propertyType(p ply.PropertySummary) string {
	t := p.FileType
	if p.SizeType != "" {
		t = p.SizeType + " " + t
	}
	if p.MemType != p.FileType {
		t += " as " + p.MemType
	}
	return t
}

func elementNames(s ply.Summary) string {
	names := make([]string, 0, len(s.Elements))
	for _, el := range s.Elements {
		names = append(names, fmt.Sprintf("%s(%d)", el.Name, el.Rows))
	}
	return strings.Join(names, ",")
}

// printEntries prints archive entries
func printEntries(cmd *cobra.Command, e *env, entries []archive.Entry) error {
	out := cmd.OutOrStdout()
	if e.format == "json" {
		if entries == nil {
			entries = []archive.Entry{}
		}
		return printJSON(out, entries)
	}
	if len(entries) == 0 {
		cmd.Println("No documents archived")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tCREATED\tFORMAT\tSIZE\tSTORED\tELEMENTS")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			entry.ID,
			entry.Created.Local().Format(time.RFC3339),
			entry.Summary.Format,
			entry.Size,
			entry.Stored,
			elementNames(entry.Summary))
	}
	return w.Flush()
}

// printEntry prints a single archive entry
func printEntry(cmd *cobra.Command, e *env, entry archive.Entry) error {
	if e.format == "json" {
		return printJSON(cmd.OutOrStdout(), entry)
	}
	cmd.Printf("ID:       %s\n", entry.ID)
	cmd.Printf("Created:  %s\n", entry.Created.Local().Format(time.RFC3339))
	cmd.Printf("Size:     %d bytes (%d stored)\n", entry.Size, entry.Stored)
	cmd.Printf("Elements: %s\n", elementNames(entry.Summary))
	return nil
}
