package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

// outputPath resolves the -o flag: empty writes name into the working
// directory, an existing directory receives name, anything else is the
// file path itself.
func outputPath(flag, name string) string {
	if flag == "" {
		return name
	}
	if fi, err := os.Stat(flag); err == nil && fi.IsDir() {
		return filepath.Join(flag, name)
	}
	return flag
}

// save writes data to the resolved output path and, with --publish, to the
// artifact sink.
func save(cmd *cobra.Command, name, contentType string, data []byte) error {
	out, _ := cmd.Flags().GetString("output")
	path := outputPath(out, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logger.Info().Str("file", path).Int("bytes", len(data)).Msg("saved")
	fmt.Fprintln(cmd.OutOrStdout(), path)

	if publish, _ := cmd.Flags().GetBool("publish"); publish {
		sink, err := newSink(cmd.Context())
		if err != nil {
			return err
		}
		if sink == nil {
			return fmt.Errorf("--publish needs artifacts.dir or artifacts.s3.bucket to be configured")
		}
		loc, err := sink.Put(cmd.Context(), filepath.Base(name), contentType, data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), loc)
	}
	return nil
}

// readYAML decodes the YAML (or JSON) document at path into v. An empty
// path leaves v unchanged.
func readYAML(path string, v any) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
