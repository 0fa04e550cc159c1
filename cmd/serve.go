package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/nowplay/internal/server"
	"github.com/desertthunder/nowplay/internal/web"
	"github.com/urfave/cli/v3"
)

const sweepInterval = 5 * time.Minute

// Serve starts the HTTP relay.
//
// Missing upstream credentials are fatal before the listener binds.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if err := r.ensurePlayer(); err != nil {
		return err
	}

	if port := cmd.Int("port"); port != 0 {
		r.config.Server.Port = int(port)
	}

	gate := server.NewGate(server.GateOpts{
		Window: time.Duration(r.config.Limits.WindowSeconds) * time.Second,
		Max:    r.config.Limits.MaxRequests,
		Public: r.config.Server.Public,
		Secret: r.config.Server.AccessSecret,
		Logger: r.logger,
	})

	page, err := web.NewPageHandler(r.config.Page.PollIntervalSeconds)
	if err != nil {
		return err
	}

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger), gate.RateLimit(), gate.AccessControl())
	router.Handler(server.NewAPIHandler(r.player, r.logger))
	router.Handler(page)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go gate.SweepLoop(ctx, sweepInterval)

	errChan := make(chan error, 1)
	go func() {
		r.logger.Info("listening", "addr", addr, "public", r.config.Server.Public)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
