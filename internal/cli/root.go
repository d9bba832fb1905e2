// Package cli implements the flowboard command-line interface.
//
// The serve command runs the canvas backend over HTTP. The arrange command
// applies a layout policy to the selected nodes of a saved workflow file
// without a running server.
//
// All commands support --verbose (-v) for debug-level logging and --config
// to point at a specific config file.
package cli

import (
	"context"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"flowboard/internal/config"
)

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "flowboard",
		Short:        "Backend for a node-based visual editor",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			level := parseLevel(cfg.Log.Level)
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			if path != "" {
				logger.Debug("config loaded", "path", path)
			}

			ctx := withLogger(cmd.Context(), logger)
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: search standard locations)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newArrangeCmd())

	return root
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func parseLevel(s string) charmlog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return charmlog.DebugLevel
	case "warn":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}
