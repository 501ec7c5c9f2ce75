package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/userprofile/internal/app"
	"github.com/dropDatabas3/userprofile/internal/http/server"
	"github.com/dropDatabas3/userprofile/internal/observability/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env es opcional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.Bootstrap(ctx, app.Options{})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	lg := c.Logger.With(logger.Component("server"))

	handler, cleanup, err := server.Build(c.Config, server.Options{
		Logger:  c.Logger,
		Version: app.Version,
		Commit:  app.Commit,
	})
	if err != nil {
		lg.Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := cleanup(); err != nil {
			lg.Warn("cleanup error", logger.Err(err))
		}
	}()

	srv := &http.Server{
		Addr:         c.Config.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		lg.Error("server stopped with error", logger.Err(err))
		os.Exit(1)
	}
	lg.Info("server stopped")
}
