package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"recipepipe/internal/formatter"
)

func formatCmd(opts *options) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "format [path...]",
		Short: "Re-align the tables of markdown reports and re-sign them",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				cfg, _, err := opts.load()
				if err != nil {
					return err
				}

				paths = []string{cfg.Output.Dir}
			}

			out := cmd.OutOrStdout()
			changed := 0

			for _, root := range paths {
				err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
					if err != nil {
						return err
					}

					if d.IsDir() {
						if strings.HasPrefix(d.Name(), ".") && path != root {
							return filepath.SkipDir
						}

						return nil
					}

					if !strings.EqualFold(filepath.Ext(path), ".md") {
						return nil
					}

					ok, err := formatFile(out, path, write)
					if ok {
						changed++
					}

					return err
				})
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(out, "%d file(s) changed\n", changed)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write changes instead of listing them")

	return cmd
}

func formatFile(out io.Writer, path string, write bool) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	formatted := formatter.FormatMarkdown(string(content))
	if formatted == string(content) {
		return false, nil
	}

	if !write {
		fmt.Fprintf(out, "would format: %s\n", path)

		return true, nil
	}

	if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(out, "formatted: %s\n", path)

	return true, nil
}
