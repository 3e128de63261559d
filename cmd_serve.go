package main

import (
	"github.com/spf13/cobra"

	"pagebuilder/internal/app"
)

var previewDir string

var serveCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve the page builder over MCP on stdin/stdout",
	Long: `Runs the MCP stdio server for AI agents. Scheduled and file-watched
catalog imports run in the same process. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, ctx, cancel, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer a.Close()
		return a.Serve(ctx, app.ServeOptions{Version: version, PreviewDir: previewDir})
	},
}

func init() {
	serveCmd.Flags().StringVar(&previewDir, "preview-dir", "", "keep rendered HTML of every page in this directory")
}
