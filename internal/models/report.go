package models

// Columns is the number of display columns per-game lines are spread across.
const Columns = 3

// GameLine is the display record for one game with data.
type GameLine struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Elo           float64 `json:"elo"`
	Record        string  `json:"record"`
	MatchesPlayed int64   `json:"matches_played"`
	WinRate       float64 `json:"win_rate"`
	WinRateText   string  `json:"win_rate_text"`
	TotalScore    int64   `json:"total_score"`
	ScoreText     string  `json:"score_text"`
}

// PlayerSummary aggregates every GameStat fetched for one player.
type PlayerSummary struct {
	Wins         int64   `json:"wins"`
	Losses       int64   `json:"losses"`
	Draws        int64   `json:"draws"`
	TotalMatches int64   `json:"total_matches"`
	TotalPoints  int64   `json:"total_points"`
	WinRate      float64 `json:"win_rate"`
	WinRateText  string  `json:"win_rate_text"`

	FavoriteGame       string  `json:"favorite_game,omitempty"`
	FavoriteGamePlayed int64   `json:"favorite_game_played"`
	BestGame           string  `json:"best_game,omitempty"`
	BestElo            float64 `json:"best_elo"`

	// AverageElo is nil when no game returned data.
	AverageElo *float64 `json:"average_elo"`

	GamesAttempted int `json:"games_attempted"`
	GamesFailed    int `json:"games_failed"`
}

// PlayerReport is everything a /playerinfo response is built from.
type PlayerReport struct {
	UserID      string              `json:"user_id"`
	Profile     PlayerProfile       `json:"profile"`
	Summary     PlayerSummary       `json:"summary"`
	Columns     [Columns][]GameLine `json:"columns"`
	AccentColor int                 `json:"accent_color"`
}
