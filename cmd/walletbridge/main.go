package main

import (
	"context"
	"os"

	"github.com/gabapcia/walletbridge/internal/chainregistry"
	"github.com/gabapcia/walletbridge/internal/config"
	"github.com/gabapcia/walletbridge/internal/handlers/cli"
	"github.com/gabapcia/walletbridge/internal/infra/storage/redis"
	"github.com/gabapcia/walletbridge/internal/infra/transport/jsonrpc"
	"github.com/gabapcia/walletbridge/internal/pkg/logger"
	"github.com/gabapcia/walletbridge/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletbridge/internal/pkg/telemetry"
	"github.com/gabapcia/walletbridge/internal/provider"
)

const serviceName = "walletbridge"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			os.Stderr.WriteString("telemetry error: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("logger error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	transport := jsonrpc.NewClient(cfg.RPCEndpoint, jsonrpc.WithTimeout(cfg.RequestTimeout))
	p := provider.New(transport,
		provider.WithPollInterval(cfg.PollInterval),
		provider.WithRetry(retry.New()),
	)
	defer p.Close()

	var storage chainregistry.Storage = chainregistry.NewMemoryStorage()
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal(ctx, "redis connection failed", "error", err)
		}
		defer redisClient.Close()
		storage = redisClient
	}

	if err := cli.Run(ctx, p, chainregistry.New(storage)); err != nil {
		logger.Fatal(ctx, "command failed", "error", err)
	}
}
