package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iconidentify/mediashim/internal/api"
	"github.com/iconidentify/mediashim/internal/api/handler"
	"github.com/iconidentify/mediashim/internal/config"
	"github.com/iconidentify/mediashim/internal/proxy"
	"github.com/iconidentify/mediashim/internal/repository"
	"github.com/iconidentify/mediashim/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mediashim %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting mediashim",
		"version", Version,
		"build_time", BuildTime,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The videos directory itself is created lazily on the first save.
	if err := os.MkdirAll(cfg.Storage.BasePath, 0755); err != nil {
		logger.Error("failed to create storage directory", "error", err)
		os.Exit(1)
	}

	store, err := repository.NewFilesystemVideoStore(cfg.Storage)
	if err != nil {
		logger.Error("failed to create video store", "error", err)
		os.Exit(1)
	}
	fetcher := proxy.NewHTTPFetcher(cfg.Proxy)

	mediaSvc := service.NewMediaService(fetcher, store, logger)

	mediaHandler := handler.NewMediaHandler(mediaSvc, cfg.Storage.MaxFileSize, logger)
	healthHandler := handler.NewHealthHandler(mediaSvc)

	router := api.NewRouter(mediaHandler, healthHandler, cfg.Server.RequestTimeout)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	go func() {
		dir, _ := store.Dir()
		logger.Info("starting HTTP server", "addr", srv.Addr, "videos_dir", dir)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// In-flight fetches and saves run to completion
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
