package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/stegportal/portal/internal/config"
	"github.com/stegportal/portal/internal/logger"
	"github.com/stegportal/portal/internal/router"
	"github.com/stegportal/portal/internal/setup"
)

const (
	readTimeout     = 5 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	configFolder := flag.String("config_folder", "config", "folder with public.yaml and private.yaml")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Log.Warn("reading .env", "error", err)
	}

	cfg := config.MustLoad(*configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to setup dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	server := configureServer(cfg.Public, router.SetupRouter(deps))

	go func() {
		logger.Log.Info("starting portal", "addr", server.Addr, "api_base_url", cfg.Public.APIBaseURL, "session_driver", cfg.SessionDriver())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down portal")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Error("server shutdown", "error", err)
	}
}

// configureServer leaves room in the write timeout for a sign-up call to the backend.
func configureServer(public config.Public, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + public.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: public.SignupTimeout + 5*time.Second,
	}
}
