package main

import (
	"context"
	"log"

	"github.com/dropDatabas3/userprofile/internal/app"
	"github.com/dropDatabas3/userprofile/internal/http/server"
	"github.com/dropDatabas3/userprofile/internal/lambdahost"
	"github.com/dropDatabas3/userprofile/internal/observability/logger"
)

func main() {
	c, err := app.Bootstrap(context.Background(), app.Options{})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	handler, cleanup, err := server.Build(c.Config, server.Options{
		Logger:  c.Logger,
		Version: app.Version,
		Commit:  app.Commit,
	})
	if err != nil {
		c.Logger.Fatal("wiring failed", logger.Err(err))
	}
	defer func() { _ = cleanup() }()

	lambdahost.New(handler).Start()
}
