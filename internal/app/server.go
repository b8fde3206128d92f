package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start brings the HTTP server up and returns a channel that closes once a
// termination signal arrives. Callers block on it, then run Stop.
func (a *App) Start() <-chan struct{} {
	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	done := make(chan struct{})
	go func() {
		ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		<-ctx.Done()
		slog.Info("termination requested")

		a.cancel()
		close(done)
	}()

	return done
}

// Stop drains the application: no new requests, then wait for background
// jobs to notice the canceled root context, then release module resources.
func (a *App) Stop(ctx context.Context) {
	a.cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "http server shutdown failed", "error", err)
	}

	slog.InfoContext(ctx, "waiting for background tasks")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background tasks reported errors", "error", err)
	}

	for name, closer := range a.closers {
		if err := closer(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", name, "error", err)
		}
	}

	slog.InfoContext(ctx, "shutdown complete")
}
