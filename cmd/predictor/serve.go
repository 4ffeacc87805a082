package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glucoscope/predictor/internal/diagnosis"
	"github.com/glucoscope/predictor/internal/logging"
	"github.com/glucoscope/predictor/internal/server"
	"github.com/glucoscope/predictor/internal/store"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web form and JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default $PORT or 8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	resolvePaths(cfg)
	if servePort != "" {
		cfg.Port = servePort
	}
	gin.SetMode(cfg.GinMode)

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	predictor, err := diagnosis.Load(cfg.DatasetPath, cfg.ModelPath)
	if err != nil {
		return err
	}
	log.Infow("predictor ready", "dataset", cfg.DatasetPath, "model", cfg.ModelPath, "features", predictor.Scaler().Columns)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var repo server.Repository
	if cfg.EnableDB {
		pool, err := store.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		s := store.New(pool, log)
		if err := s.Migrate(ctx); err != nil {
			return err
		}
		repo = s
	}

	router, err := server.New(predictor, repo, log).Router()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Infow("server listening", "addr", srv.Addr)
	return waitForShutdown(srv, errCh, log)
}

func waitForShutdown(srv *http.Server, errCh <-chan error, log *zap.SugaredLogger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warnw("graceful shutdown failed", "err", err)
		return err
	}
	return nil
}
