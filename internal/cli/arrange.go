package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"flowboard/internal/codec"
	"flowboard/internal/domain"
	"flowboard/internal/layout"
)

func newArrangeCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "arrange <policy> <workflow>",
		Short: "Arrange the selected nodes of a saved workflow",
		Long: `Arrange the selected nodes of a saved workflow file.

Policy is horizontal, vertical or grid, or the shortcut h, v or g. The file
is rewritten in place unless --out is given; --out - writes to stdout. YAML
files are recognised by their .yaml or .yml extension.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			opts := configFromContext(ctx).LayoutOptions()

			policy, err := layout.ParsePolicy(args[0])
			if err != nil {
				return err
			}
			in := args[1]
			if out == "" {
				out = in
			}

			prog := newProgress(logger)
			wf, err := readWorkflow(in)
			if err != nil {
				return err
			}

			selection := domain.Selection(wf.Nodes)
			batch, err := opts.Arrange(policy, selection)
			if err != nil {
				return err
			}
			if len(batch) == 0 {
				logger.Warn("nothing to arrange", "selected", len(selection), "need", layout.MinSelection)
				return nil
			}
			applied := wf.ApplyPositions(batch)

			if out == "-" {
				if err := writeWorkflow(cmd.OutOrStdout(), wf, formatForPath(in)); err != nil {
					return err
				}
			} else if err := writeWorkflowFile(out, wf); err != nil {
				return err
			}

			prog.done("arranged", "policy", policy, "nodes", applied)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: rewrite input, - for stdout)")

	return cmd
}

// formatForPath picks a codec format from a file extension.
func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func readWorkflow(path string) (*domain.Workflow, error) {
	c, err := codec.ForFormat(formatForPath(path))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workflow: %w", err)
	}
	defer f.Close()

	wf, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return wf, nil
}

func writeWorkflow(w io.Writer, wf *domain.Workflow, format string) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	return c.Export(wf, w)
}

// writeWorkflowFile writes through a temp file so a failed export leaves
// the existing file untouched.
func writeWorkflowFile(path string, wf *domain.Workflow) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".flowboard-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeWorkflow(tmp, wf, formatForPath(path)); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
