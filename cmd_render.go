package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	renderOut    string
	renderDrafts bool
	renderWatch  bool
)

var renderCmd = &cobra.Command{
	Use:   "render [page-id-or-slug]",
	Short: "Render pages to HTML",
	Long: `With a page argument, writes that page's HTML to stdout (or to
--out/<slug>.html). Without one, writes every published page to --out.
--watch keeps --out in sync with the database until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && renderOut == "" {
			return errors.New("--out is required when rendering all pages")
		}
		if renderWatch && renderOut == "" {
			return errors.New("--watch requires --out")
		}

		a, ctx, cancel, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer a.Close()

		if renderWatch {
			logger.Info("watching pages")
			return a.NewPreviewWatcher(renderOut).Run(ctx)
		}

		if len(args) == 1 {
			p, err := a.FindPage(args[0])
			if err != nil {
				return err
			}
			if renderOut == "" {
				return a.RenderPage(ctx, p, cmd.OutOrStdout())
			}
			path, err := a.WritePageHTML(ctx, p, renderOut)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}

		paths, err := a.RenderAll(ctx, renderOut, renderDrafts)
		for _, path := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return err
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output directory")
	renderCmd.Flags().BoolVar(&renderDrafts, "drafts", false, "include draft pages")
	renderCmd.Flags().BoolVarP(&renderWatch, "watch", "w", false, "re-render pages when they change")
}
