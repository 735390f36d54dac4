package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpserver "github.com/jrodas4044/signature-register/internal/http"
	"github.com/jrodas4044/signature-register/internal/infra/db"
	"github.com/jrodas4044/signature-register/internal/infra/ratelimit"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Run:   serveRun,
	}
}

func serveRun(_ *cobra.Command, _ []string) {
	cfg, logger, gdb, err := commonRun()
	if err != nil {
		fail(logger, "startup failed", err)
	}
	defer logger.Sync()

	if err := db.Migrate(gdb); err != nil {
		fail(logger, "migrate failed", err)
	}

	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		limiter, err = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, time.Now)
		if err != nil {
			fail(logger, "redis limiter init failed", err)
		}
		logger.Info("using redis rate limiter", zap.String("addr", cfg.RedisAddr))
	} else {
		limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
	}

	server := httpserver.NewServer(cfg, gdb, limiter, logger)
	if err := server.Run(); err != nil {
		fail(logger, "server stopped", err)
	}
}
