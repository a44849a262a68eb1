package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkglog"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkguid"
)

func (a *App) initConfig() {
	path := "/config/config.yaml"
	if os.Getenv("LOCAL") == "true" {
		path = "./config/config.yaml"
	}

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))

	if err := pkglog.SetLevel(cfg.GetString("log.level")); err != nil {
		slog.Warn("keeping default log level", "error", err)
	}

	a.config = cfg
}

func (a *App) initLibraries() {
	a.goroutine = pkgroutine.NewManager(100)
	a.uuid = pkguid.NewUUID()

	revision, err := pkguid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init snowflake", "error", err)
		os.Exit(1)
	}
	a.revision = revision
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.uuid)

	origins := a.config.GetArray("cors.allowed_origins")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			pkgrouter.HeaderCorrelationID,
			"Content-Disposition",
		},
		AllowCredentials: !slices.Contains(origins, "*"),
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           handlers.CompressHandler(corsHandler.Handler(a.router)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
	}
}

//nolint:unparam // is always nil
func (a *App) initClosers() {
	if a.closerFn == nil {
		a.closerFn = map[string]func(context.Context) error{}
	}

	a.closerFn["HTTP Server"] = func(ctx context.Context) error {
		return a.httpServer.Shutdown(ctx)
	}
	a.closerFn["Config"] = func(context.Context) error {
		return a.config.Close()
	}
}
