package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/secondrobotics/ranked-bot/internal/logic"
	"github.com/secondrobotics/ranked-bot/internal/models"
	"github.com/secondrobotics/ranked-bot/internal/ranked"
)

// Prints the /playerinfo report for one user without going through Discord.
func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "Discord user ID to look up")
	flag.Parse()
	if *userID == "" {
		log.Fatal("-user is required")
	}

	baseURL := os.Getenv("RANKED_API_URL")
	if baseURL == "" {
		baseURL = "https://secondrobotics.org/api"
	}

	client := ranked.New(ranked.Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("SRC_API_TOKEN"),
		Logger:  zap.NewNop(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	codes, err := client.GameCodes(ctx)
	if err != nil {
		log.Fatalf("Failed to list games: %v", err)
	}

	stats := logic.NewStatsAggregator(logic.StatsAggregatorConfig{
		API:       client,
		Images:    client,
		GameCodes: codes,
	})

	report, err := stats.FetchPlayerStats(ctx, *userID)
	if err != nil {
		log.Fatalf("Lookup failed: %v", err)
	}

	fmt.Printf("%s (accent #%06X)\n\n", report.Profile.DisplayName, report.AccentColor)
	for i := 0; i < models.Columns; i++ {
		if len(report.Columns[i]) == 0 {
			continue
		}
		fmt.Printf("-- Games (Column %d) --\n%s\n", i+1, logic.FormatColumn(report.Columns[i]))
	}
	fmt.Printf("-- Summary --\n%s\n", logic.FormatSummary(report.Summary))
	fmt.Printf("\n%d/%d games failed\n", report.Summary.GamesFailed, report.Summary.GamesAttempted)
}
