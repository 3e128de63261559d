package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ServeOptions configures Serve.
type ServeOptions struct {
	Version string
	// PreviewDir, when set, keeps rendered HTML of every page up to date
	// there while serving.
	PreviewDir string
}

// Serve runs the MCP stdio server together with the catalog scheduler until
// ctx is cancelled or the client disconnects.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Catalog.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return a.MCP(opts.Version).ServeStdio(gctx)
	})
	if opts.PreviewDir != "" {
		w := a.NewPreviewWatcher(opts.PreviewDir)
		g.Go(func() error { return w.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		a.Catalog.Stop()
		waitCtx, done := context.WithTimeout(context.Background(), 30*time.Second)
		defer done()
		a.Catalog.WaitRunning(waitCtx)
		if a.Generator != nil {
			a.Generator.Wait(waitCtx)
		}
		a.logger.Info("serve stopped", zap.Error(context.Cause(gctx)))
		return nil
	})
	return g.Wait()
}
