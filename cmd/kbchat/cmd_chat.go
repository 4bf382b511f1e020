package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kb-chat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg, appOptions{interactive: true})
	if err != nil {
		return err
	}
	defer a.Close()

	// the TUI owns the lifetime; leaving it stops the metrics listener
	uiCtx, stop := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(uiCtx)

	if cfg.Metrics.Enabled {
		srv := newMetricsServer(cfg.Metrics.Address, version)
		g.Go(func() error {
			// a dead listener must not close the chat
			_ = serveMetrics(gctx, srv, a.log)
			return nil
		})
	}

	g.Go(func() error {
		defer stop()
		if err := tui.Run(gctx, a.svc, a.renderer); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info("Chat closed", map[string]interface{}{"sessionId": a.svc.Session().ID()})
	return nil
}
