package logic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/secondrobotics/ranked-bot/internal/models"
	"github.com/secondrobotics/ranked-bot/internal/ranked"
)

func newTestAggregator(api RankedAPI, codes []string) PlayerStatsService {
	return NewStatsAggregator(StatsAggregatorConfig{
		API:       api,
		Images:    &MockImageFetcher{},
		GameCodes: codes,
		Logger:    zap.NewNop(),
	})
}

func TestFetchPlayerStats_PlayerNotRegistered(t *testing.T) {
	tests := []struct {
		name       string
		profileErr error
		profile    *models.PlayerProfile
	}{
		{"exists false", nil, &models.PlayerProfile{Exists: false}},
		{"api 404", ranked.ErrNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockRankedAPI{
				GetPlayerFunc: func(ctx context.Context, userID string) (*models.PlayerProfile, error) {
					return tt.profile, tt.profileErr
				},
			}
			s := newTestAggregator(api, []string{"a", "b", "c"})

			report, err := s.FetchPlayerStats(context.Background(), "42")
			if !errors.Is(err, ErrPlayerNotFound) {
				t.Fatalf("FetchPlayerStats() error = %v, want ErrPlayerNotFound", err)
			}
			if report != nil {
				t.Errorf("FetchPlayerStats() report = %+v, want nil", report)
			}
			if n := api.gameCalls.Load(); n != 0 {
				t.Errorf("game fetches = %d, want 0", n)
			}
		})
	}
}

func TestFetchPlayerStats_UpstreamUnavailable(t *testing.T) {
	api := &MockRankedAPI{
		GetPlayerFunc: func(ctx context.Context, userID string) (*models.PlayerProfile, error) {
			return nil, context.DeadlineExceeded
		},
	}
	s := newTestAggregator(api, []string{"a"})

	_, err := s.FetchPlayerStats(context.Background(), "42")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("FetchPlayerStats() error = %v, want ErrUpstreamUnavailable", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("FetchPlayerStats() error = %v, want wrapped DeadlineExceeded", err)
	}
	if n := api.gameCalls.Load(); n != 0 {
		t.Errorf("game fetches = %d, want 0", n)
	}
}

func TestFetchPlayerStats_FavoriteAndTotals(t *testing.T) {
	api := &MockRankedAPI{
		GetGameStatsFunc: statsByCode(map[string]*models.GameStat{
			"a": {Name: "Alpha", Elo: 1100, MatchesWon: 6, MatchesLost: 4, MatchesPlayed: 10, TotalScore: 1000},
			"b": {Name: "Bravo", Elo: 1300, MatchesWon: 5, MatchesLost: 15, MatchesPlayed: 20, TotalScore: 2500},
			"c": {Name: "Charlie", Elo: 900, MatchesWon: 1, MatchesLost: 4, MatchesPlayed: 5, TotalScore: 300},
		}, ranked.ErrNoGameData),
	}
	s := newTestAggregator(api, []string{"a", "b", "c"})

	report, err := s.FetchPlayerStats(context.Background(), "42")
	if err != nil {
		t.Fatalf("FetchPlayerStats() error = %v", err)
	}

	sum := report.Summary
	if sum.FavoriteGame != "Bravo" {
		t.Errorf("FavoriteGame = %q, want Bravo", sum.FavoriteGame)
	}
	if sum.TotalMatches != 35 {
		t.Errorf("TotalMatches = %d, want 35", sum.TotalMatches)
	}
	if sum.Wins != 12 || sum.Losses != 23 || sum.Draws != 0 {
		t.Errorf("Record = %d-%d-%d, want 12-23-0", sum.Wins, sum.Losses, sum.Draws)
	}
	if sum.TotalPoints != 3800 {
		t.Errorf("TotalPoints = %d, want 3800", sum.TotalPoints)
	}
	if sum.BestGame != "Bravo" || sum.BestElo != 1300 {
		t.Errorf("Best = %s (%v), want Bravo (1300)", sum.BestGame, sum.BestElo)
	}
	if sum.WinRateText != "34.29%" {
		t.Errorf("WinRateText = %q, want 34.29%%", sum.WinRateText)
	}
	if sum.AverageElo == nil || *sum.AverageElo != 1100 {
		t.Errorf("AverageElo = %v, want 1100", sum.AverageElo)
	}
	if report.Profile.DisplayName != "Mock Player" {
		t.Errorf("Profile.DisplayName = %q", report.Profile.DisplayName)
	}
}

func TestFetchPlayerStats_RoundRobinColumns(t *testing.T) {
	codes := []string{"g0", "g1", "g2", "g3", "g4", "g5", "g6", "g7"}
	stats := map[string]*models.GameStat{}
	for i, c := range codes {
		if i == 2 || i == 5 {
			continue // no data for these
		}
		stats[c] = &models.GameStat{Name: c, Elo: 1000, MatchesPlayed: 1}
	}
	api := &MockRankedAPI{GetGameStatsFunc: statsByCode(stats, errors.New("boom"))}
	s := newTestAggregator(api, codes)

	report, err := s.FetchPlayerStats(context.Background(), "42")
	if err != nil {
		t.Fatalf("FetchPlayerStats() error = %v", err)
	}

	// Successful games in order: g0 g1 g3 g4 g6 g7
	want := [models.Columns][]string{
		{"g0", "g4"},
		{"g1", "g6"},
		{"g3", "g7"},
	}
	for col := range want {
		var got []string
		for _, l := range report.Columns[col] {
			got = append(got, l.Code)
		}
		if fmt.Sprint(got) != fmt.Sprint(want[col]) {
			t.Errorf("column %d = %v, want %v", col, got, want[col])
		}
	}

	if report.Summary.GamesAttempted != 8 || report.Summary.GamesFailed != 2 {
		t.Errorf("attempted/failed = %d/%d, want 8/2", report.Summary.GamesAttempted, report.Summary.GamesFailed)
	}
	// Failed games contribute zeros: 6*1000/8
	if report.Summary.AverageElo == nil || *report.Summary.AverageElo != 750 {
		t.Errorf("AverageElo = %v, want 750", report.Summary.AverageElo)
	}
}

func TestFetchPlayerStats_TieBreaks(t *testing.T) {
	api := &MockRankedAPI{
		GetGameStatsFunc: statsByCode(map[string]*models.GameStat{
			"a": {Name: "First", Elo: 1500, MatchesPlayed: 12},
			"b": {Name: "Second", Elo: 1500, MatchesPlayed: 12},
			"c": {Name: "Third", Elo: 1499.99, MatchesPlayed: 11},
		}, ranked.ErrNoGameData),
	}
	s := newTestAggregator(api, []string{"a", "b", "c"})

	report, err := s.FetchPlayerStats(context.Background(), "42")
	if err != nil {
		t.Fatalf("FetchPlayerStats() error = %v", err)
	}
	if report.Summary.BestGame != "First" {
		t.Errorf("BestGame = %q, want First (equal elo keeps earlier game)", report.Summary.BestGame)
	}
	if report.Summary.FavoriteGame != "First" {
		t.Errorf("FavoriteGame = %q, want First (equal matches keeps earlier game)", report.Summary.FavoriteGame)
	}
}

func TestFetchPlayerStats_NoSuccessfulGames(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
	}{
		{"all games fail", []string{"a", "b"}},
		{"no games", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockRankedAPI{GetGameStatsFunc: statsByCode(nil, ranked.ErrNoGameData)}
			s := newTestAggregator(api, tt.codes)

			report, err := s.FetchPlayerStats(context.Background(), "42")
			if err != nil {
				t.Fatalf("FetchPlayerStats() error = %v", err)
			}

			sum := report.Summary
			if sum.AverageElo != nil {
				t.Errorf("AverageElo = %v, want nil", *sum.AverageElo)
			}
			if sum.Wins != 0 || sum.Losses != 0 || sum.Draws != 0 || sum.TotalMatches != 0 || sum.TotalPoints != 0 {
				t.Errorf("totals = %+v, want zero", sum)
			}
			if sum.WinRateText != "0%" {
				t.Errorf("WinRateText = %q, want 0%%", sum.WinRateText)
			}
			for col, lines := range report.Columns {
				if len(lines) != 0 {
					t.Errorf("column %d has %d lines, want 0", col, len(lines))
				}
			}
			if got := FormatSummary(sum); got != "Record: 0-0-0 [0]\nTotal Points Scored: 0\nWin Rate: 0%\nFavorite Game: None\nBest Game: None (0)\nAverage ELO: Unknown" {
				t.Errorf("FormatSummary() = %q", got)
			}
		})
	}
}

func TestFetchPlayerStats_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	var mu sync.Mutex

	api := &MockRankedAPI{
		GetGameStatsFunc: func(ctx context.Context, code, userID string) (*models.GameStat, error) {
			n := inFlight.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return &models.GameStat{Name: code, MatchesPlayed: 1}, nil
		},
	}

	codes := make([]string, 20)
	for i := range codes {
		codes[i] = fmt.Sprintf("g%02d", i)
	}

	s := NewStatsAggregator(StatsAggregatorConfig{
		API:         api,
		GameCodes:   codes,
		Concurrency: 3,
		Logger:      zap.NewNop(),
	})

	report, err := s.FetchPlayerStats(context.Background(), "42")
	if err != nil {
		t.Fatalf("FetchPlayerStats() error = %v", err)
	}
	if p := peak.Load(); p > 3 {
		t.Errorf("peak in-flight fetches = %d, want <= 3", p)
	}
	if got := len(report.Columns[0]) + len(report.Columns[1]) + len(report.Columns[2]); got != 20 {
		t.Errorf("lines = %d, want 20", got)
	}
}

func TestNewStatsAggregator_CopiesGameCodes(t *testing.T) {
	codes := []string{"a"}
	api := &MockRankedAPI{}
	s := newTestAggregator(api, codes)
	codes[0] = "mutated"

	report, err := s.FetchPlayerStats(context.Background(), "42")
	if err != nil {
		t.Fatalf("FetchPlayerStats() error = %v", err)
	}
	if got := report.Columns[0][0].Code; got != "a" {
		t.Errorf("code = %q, want a", got)
	}
}

func TestFetchPlayerStats_AccentColor(t *testing.T) {
	data := encodePNG(t, quadrantImage())
	api := &MockRankedAPI{
		GetPlayerFunc: func(ctx context.Context, userID string) (*models.PlayerProfile, error) {
			return &models.PlayerProfile{Exists: true, DisplayName: "Ada", Avatar: "https://cdn.test/ada.png"}, nil
		},
	}

	tests := []struct {
		name   string
		images ImageFetcher
		want   int
	}{
		{
			name: "sampled",
			images: &MockImageFetcher{FetchImageFunc: func(ctx context.Context, url string) ([]byte, error) {
				return data, nil
			}},
			want: 0x123456,
		},
		{
			name: "avatar fetch fails",
			images: &MockImageFetcher{FetchImageFunc: func(ctx context.Context, url string) ([]byte, error) {
				return nil, errors.New("timeout")
			}},
			want: DefaultAccentColor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStatsAggregator(StatsAggregatorConfig{
				API:       api,
				Images:    tt.images,
				GameCodes: []string{"a"},
				Logger:    zap.NewNop(),
				Intn:      func(n int) int { return n - 1 },
			})

			report, err := s.FetchPlayerStats(context.Background(), "42")
			if err != nil {
				t.Fatalf("FetchPlayerStats() error = %v", err)
			}
			if report.AccentColor != tt.want {
				t.Errorf("AccentColor = %#06x, want %#06x", report.AccentColor, tt.want)
			}
		})
	}
}
