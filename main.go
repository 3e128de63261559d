package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pagebuilder/internal/app"
	"pagebuilder/internal/config"
	"pagebuilder/internal/logging"
)

var version = "dev"

var (
	// Global flags
	configPath string
	logLevel   string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pagebuilder",
	Short: "Compose storefront pages from typed content blocks",
	Long: `pagebuilder stores pages as ordered lists of typed blocks (hero, text,
grid, testimonials, product rows, images, spacers), renders them to HTML with
live catalog data, and exposes composition, generation and category curation
to AI agents over MCP.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		if verbose {
			level = "debug"
		}
		logger, _, err = logging.New(logging.Options{Level: level, File: cfg.LogFile, Console: cmd.Name() != "serve-mcp"})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $PAGEBUILDER_CONFIG or ~/.local/share/pagebuilder/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd, renderCmd, importCmd, curateCmd, categoriesCmd)
}

// openApp builds the app for a command and returns a context cancelled on
// SIGINT or SIGTERM.
func openApp(cmd *cobra.Command) (*app.App, context.Context, context.CancelFunc, error) {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return a, ctx, cancel, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
