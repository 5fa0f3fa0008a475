// Package cmd implements the nodeward CLI commands.
//
// The root command loads configuration and builds the logger; serve runs the
// HTTP API and preview renders the page in the terminal.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-drift/nodeward/internal/config"
	"github.com/go-drift/nodeward/internal/logging"
	"github.com/go-drift/nodeward/pkg/content"
	"github.com/go-drift/nodeward/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nodeward",
	Short: "Nodeward - scroll-driven landing page service",
	Long: `Nodeward serves a landing page whose sections reveal and whose
statistics count up as they scroll into view.

The serve command exposes the page catalog, rendered page snapshots, the
contact form and the live monitoring feed over HTTP. The preview command
renders the same page in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		errors.SetHandler(errors.NewLogHandler(logger))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, previewCmd, versionCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// loadCatalog returns the configured catalog, or the embedded one when no
// path is set.
func loadCatalog(c config.ContentConfig) (*content.Catalog, error) {
	if c.Path == "" {
		return content.Default(), nil
	}
	catalog, err := content.LoadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	return catalog, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nodeward version %s (built %s)\n", Version, BuildTime)
	},
}
