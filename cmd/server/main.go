package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/finbook-app/finbook/internal/api"
	"github.com/finbook-app/finbook/pkg/config"
	"github.com/finbook-app/finbook/pkg/redisx"
)

func main() {
	cfg, log, err := config.Initialize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting FinBook API server",
		zap.String("version", "0.1.0"),
		zap.String("environment", cfg.Server.Environment),
	)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = cfg.Redis.URL
	}

	redisClient, err := redisx.NewClient(redisURL, log)
	if err != nil {
		log.Fatal("Failed to initialize Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	serverConfig := api.ServerConfig{
		Port:          cfg.Server.Port,
		Host:          cfg.Server.Host,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		JWTSecret:     cfg.Auth.JWTSecret,
		JWTIssuer:     cfg.Auth.JWTIssuer,
		JWTExpiration: cfg.Auth.JWTExpiration,
		EventsEnabled: cfg.Events.Enabled,
	}

	apiServer, err := api.NewServer(serverConfig, log, redisClient)
	if err != nil {
		log.Fatal("Failed to create API server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down server...")
		cancel()
	}()

	if err := apiServer.Start(ctx); err != nil {
		log.Error("Server error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Server gracefully stopped")
}
