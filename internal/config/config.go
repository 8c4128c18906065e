package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Status server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Discord
	DiscordToken   string
	DiscordGuildID string

	// Ranked API
	RankedAPIURL      string
	RankedAPIToken    string
	RankedAPITimeout  time.Duration
	RankedAPIRPS      float64
	RankedAPIBurst    int
	SiteURL           string
	RegisterURL       string
	FallbackAvatarURL string

	// Aggregation
	FetchConcurrency int
	CommandTimeout   time.Duration

	// Worker pool
	WorkerCount int
	QueueSize   int

	// Cooldown store, optional
	RedisURL        string
	CommandCooldown time.Duration
}

// Load loads configuration from environment variables, reading a .env file
// first when one is present. It returns an error if critical configuration
// is missing.
func Load() (*Config, error) {
	// A missing .env is normal in containers; real env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		RankedAPIURL:      strings.TrimRight(getEnv("RANKED_API_URL", "https://secondrobotics.org/api"), "/"),
		RankedAPITimeout:  getEnvDuration("RANKED_API_TIMEOUT", 10*time.Second),
		RankedAPIRPS:      getEnvFloat("RANKED_API_RPS", 20),
		RankedAPIBurst:    getEnvInt("RANKED_API_BURST", 20),
		SiteURL:           strings.TrimRight(getEnv("SITE_URL", "https://secondrobotics.org"), "/"),
		RegisterURL:       getEnv("REGISTER_URL", "https://www.secondrobotics.org/login"),
		FallbackAvatarURL: getEnv("FALLBACK_AVATAR_URL", "https://i0.wp.com/sbcf.fr/wp-content/uploads/2018/03/sbcf-default-avatar.png"),

		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", 8),
		CommandTimeout:   getEnvDuration("COMMAND_TIMEOUT", 30*time.Second),

		WorkerCount: getEnvInt("WORKER_COUNT", 4),
		QueueSize:   getEnvInt("QUEUE_SIZE", 64),

		RedisURL:        getEnv("REDIS_URL", ""),
		CommandCooldown: getEnvDuration("COMMAND_COOLDOWN", 5*time.Second),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.DiscordToken, err = getEnvRequired("DISCORD_TOKEN"); err != nil {
		return nil, err
	}
	if cfg.DiscordGuildID, err = getEnvRequired("DISCORD_GUILD_ID"); err != nil {
		return nil, err
	}
	if cfg.RankedAPIToken, err = getEnvRequired("SRC_API_TOKEN"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the bot runs with production logging.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
