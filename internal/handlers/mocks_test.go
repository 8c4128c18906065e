package handlers

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/secondrobotics/ranked-bot/internal/models"
)

// MockPlayerStatsService
type MockPlayerStatsService struct {
	FetchPlayerStatsFunc func(ctx context.Context, userID string) (*models.PlayerReport, error)
}

func (m *MockPlayerStatsService) FetchPlayerStats(ctx context.Context, userID string) (*models.PlayerReport, error) {
	if m.FetchPlayerStatsFunc != nil {
		return m.FetchPlayerStatsFunc(ctx, userID)
	}
	return &models.PlayerReport{UserID: userID}, nil
}

type mockQueue struct{ depth int }

func (m mockQueue) QueueDepth() int { return m.depth }

type mockPinger struct{ fail bool }

func (m mockPinger) Ping(ctx context.Context) *redis.StatusCmd {
	if m.fail {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	return redis.NewStatusResult("PONG", nil)
}
