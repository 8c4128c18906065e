package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/secondrobotics/ranked-bot/internal/models"
	"github.com/secondrobotics/ranked-bot/internal/ranked"
)

var (
	// ErrPlayerNotFound means the user has no account on the ranked site.
	ErrPlayerNotFound = errors.New("player not registered")
	// ErrUpstreamUnavailable means the profile lookup itself failed.
	ErrUpstreamUnavailable = errors.New("ranked api unavailable")
)

const defaultConcurrency = 8

// Prometheus metrics
var (
	playerLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rankedbot_player_lookups_total",
		Help: "Player profile lookups by outcome",
	}, []string{"outcome"})

	gameFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rankedbot_game_fetches_total",
		Help: "Per-game stat fetches by outcome",
	}, []string{"outcome"})

	aggregateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rankedbot_aggregate_duration_seconds",
		Help:    "Duration of a full player stats aggregation",
		Buckets: prometheus.DefBuckets,
	})
)

// StatsAggregatorConfig configures the aggregator.
type StatsAggregatorConfig struct {
	API    RankedAPI
	Images ImageFetcher
	// GameCodes is the sorted list fetched at startup. It is copied on
	// construction and never refreshed; restart the process to pick up new
	// games.
	GameCodes []string
	// Concurrency bounds in-flight per-game fetches for one invocation.
	Concurrency int
	Logger      *zap.Logger
	// Intn overrides the random source used for avatar sampling.
	Intn func(n int) int
}

type statsAggregator struct {
	api         RankedAPI
	codes       []string
	concurrency int
	colors      *accentPicker
	logger      *zap.SugaredLogger
}

// NewStatsAggregator creates the player stats service.
func NewStatsAggregator(cfg StatsAggregatorConfig) PlayerStatsService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	logger := cfg.Logger.Sugar()

	return &statsAggregator{
		api:         cfg.API,
		codes:       append([]string(nil), cfg.GameCodes...),
		concurrency: cfg.Concurrency,
		colors:      newAccentPicker(cfg.Images, cfg.Intn, logger),
		logger:      logger,
	}
}

// gameResult is one slot of the fan-out. stat is nil when the fetch failed.
type gameResult struct {
	code string
	stat *models.GameStat
}

// FetchPlayerStats resolves the player, fetches every game concurrently and
// folds the results in game-code order.
func (s *statsAggregator) FetchPlayerStats(ctx context.Context, userID string) (*models.PlayerReport, error) {
	start := time.Now()
	defer func() { aggregateDuration.Observe(time.Since(start).Seconds()) }()

	profile, err := s.api.GetPlayer(ctx, userID)
	if err != nil {
		if errors.Is(err, ranked.ErrNotFound) {
			playerLookups.WithLabelValues("not_found").Inc()
			return nil, ErrPlayerNotFound
		}
		playerLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	if !profile.Exists {
		playerLookups.WithLabelValues("not_found").Inc()
		return nil, ErrPlayerNotFound
	}
	playerLookups.WithLabelValues("ok").Inc()

	results := make([]gameResult, len(s.codes))
	var accent int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	g.Go(func() error {
		accent = s.colors.pick(gctx, profile.Avatar)
		return nil
	})

	for i, code := range s.codes {
		i, code := i, code
		g.Go(func() error {
			results[i] = gameResult{code: code, stat: s.fetchGame(gctx, code, userID)}
			return nil
		})
	}

	// Tasks never return errors; a failed game only leaves its slot empty.
	_ = g.Wait()

	acc := newAccumulator(len(s.codes))
	for _, r := range results {
		acc = acc.fold(r)
	}

	report := &models.PlayerReport{
		UserID:      userID,
		Profile:     *profile,
		Summary:     acc.summary(),
		Columns:     acc.columns,
		AccentColor: accent,
	}

	s.logger.Infow("aggregated player stats",
		"user_id", userID,
		"games", len(s.codes),
		"failed", report.Summary.GamesFailed,
		"duration", time.Since(start),
	)

	return report, nil
}

func (s *statsAggregator) fetchGame(ctx context.Context, code, userID string) *models.GameStat {
	stat, err := s.api.GetGameStats(ctx, code, userID)
	switch {
	case err == nil:
		gameFetches.WithLabelValues("ok").Inc()
		return stat
	case errors.Is(err, ranked.ErrNoGameData):
		gameFetches.WithLabelValues("no_data").Inc()
		s.logger.Debugw("no game data", "code", code, "user_id", userID)
	default:
		gameFetches.WithLabelValues("error").Inc()
		s.logger.Warnw("game stats fetch failed", "code", code, "user_id", userID, "error", err)
	}
	return nil
}

// accumulator carries the running totals of the fold.
type accumulator struct {
	wins, losses, draws, points int64

	bestGame string
	bestElo  float64

	favoriteGame   string
	favoritePlayed int64

	elos      []float64
	succeeded int
	failed    int

	columns [models.Columns][]models.GameLine
}

func newAccumulator(capacity int) accumulator {
	return accumulator{elos: make([]float64, 0, capacity)}
}

// fold adds one game result. Ties on elo or matches played keep the earlier game.
func (a accumulator) fold(r gameResult) accumulator {
	if r.stat == nil {
		a.elos = append(a.elos, 0)
		a.failed++
		return a
	}
	st := r.stat

	a.wins += st.MatchesWon
	a.losses += st.MatchesLost
	a.draws += st.MatchesDrawn
	a.points += st.TotalScore

	if st.Elo > a.bestElo {
		a.bestElo = st.Elo
		a.bestGame = st.Name
	}
	if st.MatchesPlayed > a.favoritePlayed {
		a.favoritePlayed = st.MatchesPlayed
		a.favoriteGame = st.Name
	}
	a.elos = append(a.elos, st.Elo)

	rate, defined := winRate(st.MatchesWon, st.MatchesPlayed)
	rate = round2(rate)
	line := models.GameLine{
		Code:          r.code,
		Name:          st.Name,
		Elo:           round2(st.Elo),
		Record:        fmt.Sprintf("%d-%d-%d", st.MatchesWon, st.MatchesLost, st.MatchesDrawn),
		MatchesPlayed: st.MatchesPlayed,
		WinRate:       rate,
		WinRateText:   formatWinRate(rate, defined),
		TotalScore:    st.TotalScore,
		ScoreText:     formatThousands(st.TotalScore),
	}
	col := a.succeeded % models.Columns
	a.columns[col] = append(a.columns[col], line)
	a.succeeded++

	return a
}

func (a accumulator) summary() models.PlayerSummary {
	total := a.wins + a.losses + a.draws
	rate, defined := winRate(a.wins, total)

	s := models.PlayerSummary{
		Wins:               a.wins,
		Losses:             a.losses,
		Draws:              a.draws,
		TotalMatches:       total,
		TotalPoints:        a.points,
		WinRate:            rate,
		WinRateText:        formatOverallWinRate(rate, defined),
		FavoriteGame:       a.favoriteGame,
		FavoriteGamePlayed: a.favoritePlayed,
		BestGame:           a.bestGame,
		BestElo:            a.bestElo,
		GamesAttempted:     len(a.elos),
		GamesFailed:        a.failed,
	}

	// Failed games count as zero in the mean, but a player with no data at
	// all has no meaningful average.
	if a.succeeded > 0 {
		var sum float64
		for _, e := range a.elos {
			sum += e
		}
		avg := round2(sum / float64(len(a.elos)))
		s.AverageElo = &avg
	}

	return s
}
