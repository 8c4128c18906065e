package logic

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/secondrobotics/ranked-bot/internal/models"
)

// CrownThreshold is the win rate above which a rate gets the crown marker.
const CrownThreshold = 60.0

const crown = " :crown:"

var printer = message.NewPrinter(language.English)

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatDecimal renders v in its shortest form, always with a fractional
// part ("1500.0", "1523.46").
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

// formatThousands renders n with comma grouping ("12,345").
func formatThousands(n int64) string {
	return printer.Sprintf("%d", n)
}

// winRate returns wins/played*100, and false when played is zero.
func winRate(wins, played int64) (float64, bool) {
	if played <= 0 {
		return 0, false
	}
	return float64(wins) * 100 / float64(played), true
}

// formatWinRate renders a percentage rounded to two places. An undefined
// rate renders as "0%". The crown is decided on the rounded value.
func formatWinRate(rate float64, defined bool) string {
	if !defined {
		return "0%"
	}
	rate = round2(rate)
	s := formatDecimal(rate) + "%"
	if rate > CrownThreshold {
		s += crown
	}
	return s
}

// formatOverallWinRate is formatWinRate for the summary line, where the crown
// is decided on the unrounded rate.
func formatOverallWinRate(rate float64, defined bool) string {
	if !defined {
		return "0%"
	}
	s := formatDecimal(round2(rate)) + "%"
	if rate > CrownThreshold {
		s += crown
	}
	return s
}

// FormatGameLine renders one per-game block for a display column.
func FormatGameLine(l models.GameLine) string {
	return fmt.Sprintf("**%s [%s]**\n%s [%d] %s\nTotal Points Scored: %s\n\n",
		l.Name, formatDecimal(l.Elo), l.Record, l.MatchesPlayed, l.WinRateText, l.ScoreText)
}

// FormatColumn concatenates the blocks of one display column.
func FormatColumn(lines []models.GameLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(FormatGameLine(l))
	}
	return b.String()
}

// FormatSummary renders the summary block.
func FormatSummary(s models.PlayerSummary) string {
	favorite := orNone(s.FavoriteGame)

	best := "None (0)"
	if s.BestGame != "" {
		best = fmt.Sprintf("%s (%s)", s.BestGame, formatDecimal(round2(s.BestElo)))
	}

	average := "Unknown"
	if s.AverageElo != nil {
		average = formatDecimal(*s.AverageElo)
	}

	return fmt.Sprintf("Record: %d-%d-%d [%d]\nTotal Points Scored: %s\nWin Rate: %s\nFavorite Game: %s\nBest Game: %s\nAverage ELO: %s",
		s.Wins, s.Losses, s.Draws, s.TotalMatches,
		formatThousands(s.TotalPoints),
		s.WinRateText,
		favorite,
		best,
		average,
	)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
