package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/secondrobotics/ranked-bot/internal/logic"
)

// CommandQueue exposes the depth of the command worker pool
type CommandQueue interface {
	QueueDepth() int
}

// RedisPinger is satisfied by *redis.Client
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type Config struct {
	Queue          CommandQueue
	Redis          RedisPinger
	Logger         *zap.Logger
	AllowedOrigins []string
	// Services
	PlayerStats logic.PlayerStatsService
}

type Handler struct {
	queue          CommandQueue
	redis          RedisPinger
	logger         *zap.SugaredLogger
	allowedOrigins []string
	playerStats    logic.PlayerStatsService
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Handler{
		queue:          cfg.Queue,
		redis:          cfg.Redis,
		logger:         cfg.Logger.Sugar(),
		allowedOrigins: cfg.AllowedOrigins,
		playerStats:    cfg.PlayerStats,
	}
}

// Router builds the status API routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats/player/{userID}", h.GetPlayerStats)
	})

	return r
}
