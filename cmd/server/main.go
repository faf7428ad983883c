package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	_ "taskboard/docs"
	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/server"
)

// @title           Taskboard API
// @version         1.0
// @description     Projects, ordered tasks and time tracking.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	s, err := server.Init(context.Background(), cfg, log)
	if err != nil {
		log.Error("server initialization failed", zap.Error(err))
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
