package logic

import (
	"context"

	"github.com/secondrobotics/ranked-bot/internal/models"
)

// RankedAPI is the subset of the ranked API client the aggregator needs.
type RankedAPI interface {
	GetPlayer(ctx context.Context, userID string) (*models.PlayerProfile, error)
	GetGameStats(ctx context.Context, code, userID string) (*models.GameStat, error)
}

// ImageFetcher downloads avatar images.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// PlayerStatsService builds a player's ranked report.
type PlayerStatsService interface {
	FetchPlayerStats(ctx context.Context, userID string) (*models.PlayerReport, error)
}
