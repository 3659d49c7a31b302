// Command klinik-stored runs the record-store daemon: it boots the
// collection store over a data directory and serves the HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/klinik-dev/klinik-store/internal/api"
	"github.com/klinik-dev/klinik-store/internal/config"
	"github.com/klinik-dev/klinik-store/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("KLINIK_CONFIG"))
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger, err := cfg.BuildLogger()
	if err != nil {
		zap.NewExample().Fatal("build logger", zap.Error(err))
	}
	defer logger.Sync()

	files, err := store.NewFileStore(cfg.DataDir, logger)
	if err != nil {
		logger.Fatal("initialize persistence", zap.Error(err))
	}
	s := store.New(files, logger)

	h := api.NewHandler(s, logger)
	router := api.NewRouter(h, cfg.PublicDir)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("klinik-stored listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("data_dir", cfg.DataDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, draining requests")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
	logger.Info("exiting")
}
