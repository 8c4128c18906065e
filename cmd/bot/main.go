package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/secondrobotics/ranked-bot/internal/bot"
	"github.com/secondrobotics/ranked-bot/internal/config"
	"github.com/secondrobotics/ranked-bot/internal/cooldown"
	"github.com/secondrobotics/ranked-bot/internal/handlers"
	"github.com/secondrobotics/ranked-bot/internal/logic"
	"github.com/secondrobotics/ranked-bot/internal/ranked"
	"github.com/secondrobotics/ranked-bot/internal/worker"
)

const startupTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Sugar().Fatalw("Bot exited", "error", err)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := ranked.New(ranked.Config{
		BaseURL: cfg.RankedAPIURL,
		APIKey:  cfg.RankedAPIToken,
		Timeout: cfg.RankedAPITimeout,
		RPS:     cfg.RankedAPIRPS,
		Burst:   cfg.RankedAPIBurst,
		Logger:  logger,
	})

	// Game codes are fetched once; new games need a restart.
	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	codes, err := client.GameCodes(startCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("fetch game codes: %w", err)
	}
	sugar.Infow("Loaded ranked games", "count", len(codes), "codes", codes)

	// Redis is optional. Leave the interfaces nil when it is not configured.
	var (
		rdb      *redis.Client
		cdClient cooldown.RedisClient
		pinger   handlers.RedisPinger
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			sugar.Warnw("Redis unreachable, cooldowns will fail open", "error", err)
		}
		cdClient = rdb
		pinger = rdb
	}
	cooldowns := cooldown.New(cdClient, cfg.CommandCooldown)

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:    cfg.WorkerCount,
		QueueSize:      cfg.QueueSize,
		DefaultTimeout: cfg.CommandTimeout,
		Logger:         logger,
	})
	pool.Start(ctx)
	defer pool.Stop()

	stats := logic.NewStatsAggregator(logic.StatsAggregatorConfig{
		API:         client,
		Images:      client,
		GameCodes:   codes,
		Concurrency: cfg.FetchConcurrency,
		Logger:      logger,
	})

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	b := bot.New(bot.Config{
		Session:           session,
		GuildID:           cfg.DiscordGuildID,
		Stats:             stats,
		Queue:             pool,
		Cooldown:          cooldowns,
		Logger:            logger,
		SiteURL:           cfg.SiteURL,
		RegisterURL:       cfg.RegisterURL,
		FallbackAvatarURL: cfg.FallbackAvatarURL,
		CommandTimeout:    cfg.CommandTimeout,
	})
	if err := b.Open(); err != nil {
		return err
	}
	defer b.Close()

	h := handlers.New(handlers.Config{
		Queue:          pool,
		Redis:          pinger,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		PlayerStats:    stats,
	})
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Status server listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		sugar.Info("Shutting down")
	case err := <-errCh:
		return fmt.Errorf("status server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("Status server shutdown", "error", err)
	}
	return nil
}
