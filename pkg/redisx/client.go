package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/finbook-app/finbook/pkg/logger"
)

// Client wraps redis.Client with connection checks and logging
type Client struct {
	*redis.Client
	logger *logger.Logger
}

// NewClient creates a Redis client from a URL and verifies the
// connection before returning
func NewClient(redisURL string, log *logger.Logger) (*Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL cannot be empty")
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(options)

	client := &Client{
		Client: rdb,
		logger: log.WithComponent("redisx"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	client.logger.Info("Redis client connected",
		zap.String("addr", options.Addr),
		zap.Int("db", options.DB),
	)

	return client, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	c.logger.Info("Closing Redis connection")
	return c.Client.Close()
}

// HealthCheck pings Redis and logs the latency
func (c *Client) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := c.Ping(ctx).Err()
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Redis health check failed",
			zap.Error(err),
			zap.Duration("duration", duration),
		)
		return err
	}

	c.logger.Debug("Redis health check passed",
		zap.Duration("duration", duration),
	)

	return nil
}
