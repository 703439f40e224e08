package main

import (
	"log"

	_ "todoapp/docs"
	"todoapp/internal/config"
	"todoapp/internal/server"

	"go.uber.org/zap"
)

// @title           Todo API
// @version         1.0
// @description     API for managing todo tasks, sharing, and notifications.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()

	s, err := server.Init(cfg, logger)
	if err != nil {
		logger.Fatal("server initialization failed", zap.Error(err))
	}

	s.Run()
}
