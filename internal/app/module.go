package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gosales/internal/sales"
)

// initModules constructs every enabled feature module and hands it the
// shared infrastructure. A module that fails to come up is fatal; a half
// wired process serving traffic is worse than no process.
func (a *App) initModules() {
	if !a.config.GetBool("modules.sales.enabled") {
		slog.Warn("sales module disabled by config")
		return
	}

	closer, err := sales.New(sales.Dependency{
		Config:    a.config,
		Router:    a.router,
		Goroutine: a.goroutine,
		Context:   a.ctx,
		ID:        a.uuid,
	})
	if err != nil {
		slog.Error("failed to init sales module", "error", err)
		os.Exit(1)
	}

	if closer != nil {
		a.addCloser("sales", closer)
	}
}
