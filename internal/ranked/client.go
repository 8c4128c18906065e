// Package ranked is a client for the Second Robotics ranked REST API.
package ranked

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/secondrobotics/ranked-bot/internal/models"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRPS     = 20.0
	defaultBurst   = 20

	// MaxImageBytes caps avatar downloads.
	MaxImageBytes = 8 << 20

	apiKeyHeader = "x-api-key"
	userAgent    = "ranked-bot/1.0"
)

// Config configures the ranked API client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	RPS     float64
	Burst   int
	Logger  *zap.Logger
}

// Client is a rate-limited ranked API client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// New creates a new ranked API client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		logger:  cfg.Logger.Sugar(),
	}
}

// ListGames returns every ranked game the API knows about.
func (c *Client) ListGames(ctx context.Context) ([]models.RankedGame, error) {
	body, err := c.get(ctx, c.baseURL+"/ranked/", false, false)
	if err != nil {
		return nil, err
	}

	var games []models.RankedGame
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("decode games: %w", err)
	}
	return games, nil
}

// GameCodes returns the short codes of every ranked game, sorted.
func (c *Client) GameCodes(ctx context.Context) ([]string, error) {
	games, err := c.ListGames(ctx)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(games))
	for _, g := range games {
		codes = append(codes, g.ShortCode)
	}
	slices.Sort(codes)
	return codes, nil
}

// GetPlayer looks up a player's profile by chat user ID.
func (c *Client) GetPlayer(ctx context.Context, userID string) (*models.PlayerProfile, error) {
	body, err := c.get(ctx, c.baseURL+"/ranked/player/"+url.PathEscape(userID), true, false)
	if err != nil {
		return nil, err
	}

	var profile models.PlayerProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return &profile, nil
}

// GetGameStats fetches a player's record in one ranked game.
// Returns ErrNoGameData when the API answers with an error marker.
func (c *Client) GetGameStats(ctx context.Context, code, userID string) (*models.GameStat, error) {
	u := c.baseURL + "/ranked/" + url.PathEscape(code) + "/player/" + url.PathEscape(userID)
	body, err := c.get(ctx, u, true, true)
	if err != nil {
		return nil, err
	}

	var stat models.GameStat
	if err := json.Unmarshal(body, &stat); err != nil {
		return nil, fmt.Errorf("decode game stats: %w", err)
	}
	if stat.HasError() {
		return nil, fmt.Errorf("%w: %s", ErrNoGameData, code)
	}
	return &stat, nil
}

// FetchImage downloads an image without the API credential.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// get executes a rate-limited GET and returns the body of a 2xx response.
// With errorBody set, a 4xx carrying a JSON object is returned as a body so
// the caller can inspect the API's error marker.
func (c *Client) get(ctx context.Context, u string, authed, errorBody bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if authed {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	c.logger.Debugw("ranked request", "url", u)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if errorBody && isClientError(resp.StatusCode) {
		if marker, ok := errorMarker(body); ok {
			return marker, nil
		}
	}

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return body, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return ErrServer
	default:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func isClientError(status int) bool {
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests
}

// errorMarker normalizes a 4xx JSON body into an {"error": ...} object.
// Bodies without an "error" key (e.g. {"detail": "Not found."}) get their
// whole payload wrapped as the marker.
func errorMarker(body []byte) ([]byte, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, false
	}
	if _, ok := obj["error"]; ok {
		return body, true
	}
	wrapped, err := json.Marshal(map[string]json.RawMessage{"error": body})
	if err != nil {
		return nil, false
	}
	return wrapped, true
}
