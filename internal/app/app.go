package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/gosales/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gosales/internal/pkg/pkglog"
	"github.com/shandysiswandi/gosales/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gosales/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gosales/internal/pkg/pkguid"
)

// App owns everything with a lifecycle: configuration, shared libraries, the
// HTTP server, and the closers registered by each module. Its root context is
// canceled on shutdown, which is how in-flight jobs learn to stop.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config pkgconfig.Config

	uuid      pkguid.StringID
	goroutine *pkgroutine.Manager

	router     *pkgrouter.Router
	httpServer *http.Server

	closers map[string]func(context.Context) error
}

// New wires the application bottom-up: logging first so every later step can
// report, then config, shared libraries, the HTTP server, and finally the
// feature modules that register routes on it.
func New() *App {
	pkglog.InitLogging("gosales")

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		ctx:     ctx,
		cancel:  cancel,
		closers: make(map[string]func(context.Context) error),
	}

	a.initConfig()
	a.initLibraries()
	a.initHTTPServer()
	a.initModules()
	a.initClosers()

	return a
}

// addCloser registers a named shutdown hook run by Stop.
func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers[name] = fn
}
