package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonwraymond/faqintent/bot"
	"github.com/jonwraymond/faqintent/config"
	"github.com/jonwraymond/faqintent/server"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API, JSON-RPC, and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			b, err := a.newBot()
			if err != nil {
				return err
			}
			defer b.Close()

			stopWatch, err := a.startWatcher(ctx, b)
			if err != nil {
				return err
			}
			defer stopWatch()

			srv, err := a.newServer(b)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", a.cfg.Server.Addr)
			if err != nil {
				return err
			}
			return a.serveHTTP(ctx, ln, server.Router(srv))
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Bool("watch", false, "reload the catalog file when it changes")
	a.bindFlag(cmd, config.KeyServerAddr, "addr")
	a.bindFlag(cmd, config.KeyWatch, "watch")
	return cmd
}

// serveHTTP serves h on ln until ctx is cancelled, then shuts down
// gracefully.
func (a *app) serveHTTP(ctx context.Context, ln net.Listener, h http.Handler) error {
	httpSrv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()
	a.logger.Info("listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}

// startWatcher starts catalog hot reload when configured. The returned
// function stops it.
func (a *app) startWatcher(ctx context.Context, b *bot.Bot) (func(), error) {
	if !a.cfg.Watch {
		return func() {}, nil
	}
	w, err := bot.NewWatcher(b, a.cfg.Catalog)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return func() {
		if err := w.Stop(); err != nil {
			a.logger.Warn("stop watcher", zap.Error(err))
		}
	}, nil
}

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the FAQ tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			b, err := a.newBot()
			if err != nil {
				return err
			}
			defer b.Close()

			stopWatch, err := a.startWatcher(ctx, b)
			if err != nil {
				return err
			}
			defer stopWatch()

			srv, err := a.newServer(b)
			if err != nil {
				return err
			}
			return server.RunStdio(ctx, srv)
		},
	}
}
