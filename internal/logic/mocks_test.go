package logic

import (
	"context"
	"sync/atomic"

	"github.com/secondrobotics/ranked-bot/internal/models"
)

// MockRankedAPI implements RankedAPI for testing
type MockRankedAPI struct {
	GetPlayerFunc    func(ctx context.Context, userID string) (*models.PlayerProfile, error)
	GetGameStatsFunc func(ctx context.Context, code, userID string) (*models.GameStat, error)

	gameCalls atomic.Int32
}

func (m *MockRankedAPI) GetPlayer(ctx context.Context, userID string) (*models.PlayerProfile, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(ctx, userID)
	}
	return &models.PlayerProfile{Exists: true, DisplayName: "Mock Player"}, nil
}

func (m *MockRankedAPI) GetGameStats(ctx context.Context, code, userID string) (*models.GameStat, error) {
	m.gameCalls.Add(1)
	if m.GetGameStatsFunc != nil {
		return m.GetGameStatsFunc(ctx, code, userID)
	}
	return &models.GameStat{Name: code}, nil
}

// MockImageFetcher implements ImageFetcher for testing
type MockImageFetcher struct {
	FetchImageFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *MockImageFetcher) FetchImage(ctx context.Context, url string) ([]byte, error) {
	if m.FetchImageFunc != nil {
		return m.FetchImageFunc(ctx, url)
	}
	return nil, nil
}

// statsByCode serves fixed GameStats keyed by game code; missing codes fail.
func statsByCode(stats map[string]*models.GameStat, fail error) func(ctx context.Context, code, userID string) (*models.GameStat, error) {
	return func(ctx context.Context, code, userID string) (*models.GameStat, error) {
		if st, ok := stats[code]; ok {
			return st, nil
		}
		return nil, fail
	}
}
