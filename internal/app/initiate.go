package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/shandysiswandi/gosales/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gosales/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gosales/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gosales/internal/pkg/pkguid"
)

// configPath resolves the config file location. GOSALES_CONFIG points at an
// alternative file; the default matches the repository layout.
func configPath() string {
	if p := os.Getenv("GOSALES_CONFIG"); p != "" {
		return p
	}
	return "./config/config.yaml"
}

func (a *App) initConfig() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using OS environment only")
	}

	cfg, err := pkgconfig.NewViper(configPath())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))

	a.config = cfg
}

func (a *App) initLibraries() {
	a.goroutine = pkgroutine.NewManager(100)
	a.uuid = pkguid.NewUUID()
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.uuid)

	origins := a.config.GetArray("server.cors.allowed_origins")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (a *App) initClosers() {
	a.addCloser("config", func(context.Context) error {
		return a.config.Close()
	})
}
