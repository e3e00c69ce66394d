package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server"
	"github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogFormat, os.Stdout, cfg.Debug)
	if err != nil {
		log.Fatalf("%v", err)
	}

	code := run(context.Background(), cfg, logger)
	if z, ok := logger.(*logging.ZapLogger); ok {
		_ = z.Sync()
	}
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) int {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err.Error())
		return 1
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "app stopped with error", "error", err.Error())
		return 1
	}
	return 0
}
