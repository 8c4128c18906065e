package bot

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/secondrobotics/ranked-bot/internal/models"
	"github.com/secondrobotics/ranked-bot/internal/worker"
)

// MockPlayerStatsService
type MockPlayerStatsService struct {
	FetchPlayerStatsFunc func(ctx context.Context, userID string) (*models.PlayerReport, error)
	calls                []string
}

func (m *MockPlayerStatsService) FetchPlayerStats(ctx context.Context, userID string) (*models.PlayerReport, error) {
	m.calls = append(m.calls, userID)
	if m.FetchPlayerStatsFunc != nil {
		return m.FetchPlayerStatsFunc(ctx, userID)
	}
	return &models.PlayerReport{UserID: userID}, nil
}

// MockResponder records every reply
type MockResponder struct {
	mu        sync.Mutex
	responses []string
	ephemeral []bool
	deferred  int
	followups []*discordgo.WebhookParams
}

func (m *MockResponder) Respond(i *discordgo.Interaction, content string, ephemeral bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, content)
	m.ephemeral = append(m.ephemeral, ephemeral)
	return nil
}

func (m *MockResponder) Defer(i *discordgo.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deferred++
	return nil
}

func (m *MockResponder) Followup(i *discordgo.Interaction, params *discordgo.WebhookParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followups = append(m.followups, params)
	return nil
}

// MockQueue runs jobs inline, or sheds them when Full is set
type MockQueue struct {
	Full bool
	jobs []worker.Job
}

func (m *MockQueue) Enqueue(job worker.Job) bool {
	if m.Full {
		return false
	}
	m.jobs = append(m.jobs, job)
	job.Run(context.Background())
	return true
}

// MockCooldown
type MockCooldown struct {
	AcquireFunc func(ctx context.Context, command, userID string) (bool, time.Duration, error)
}

func (m *MockCooldown) Acquire(ctx context.Context, command, userID string) (bool, time.Duration, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, command, userID)
	}
	return true, 0, nil
}
