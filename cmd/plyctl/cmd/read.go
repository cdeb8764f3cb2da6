/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ssargent/plyfile/pkg/ply"
)

// readFile parses the header and the content of path with the command logger attached
func readFile(e *env, path string) (*ply.File, error) {
	f := ply.New()
	f.SetLogger(e.logger.With("path", path))
	if err := f.ParseHeader(path); err != nil {
		return nil, err
	}
	if err := f.ParseContent(); err != nil {
		return nil, err
	}
	return f, nil
}

// parseFormat resolves an encoding name, falling back to the configured writer format
func parseFormat(e *env, name string) (ply.Format, error) {
	if name == "" {
		return e.cfg.WriterFormat()
	}
	format, ok := ply.ParseFormat(name)
	if !ok {
		return ply.Unspecified, fmt.Errorf("unknown encoding: %s (want ascii, binary_little_endian or binary_big_endian)", name)
	}
	return format, nil
}

// convertedName returns the default output path for input converted to format
func convertedName(input, outDir string, format ply.Format) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := stem + "." + format.String() + ".ply"
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), name)
	}
	return filepath.Join(outDir, name)
}
