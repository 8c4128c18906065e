package models

import "encoding/json"

// RankedGame is one entry of the ranked game listing.
type RankedGame struct {
	ShortCode string `json:"short_code"`
	Name      string `json:"name,omitempty"`
}

// PlayerProfile is the upstream view of a player account.
type PlayerProfile struct {
	Exists      bool   `json:"exists"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// GameStat holds one player's record in one ranked game.
type GameStat struct {
	Name          string  `json:"name"`
	Elo           float64 `json:"elo"`
	MatchesWon    int64   `json:"matches_won"`
	MatchesLost   int64   `json:"matches_lost"`
	MatchesDrawn  int64   `json:"matches_drawn"`
	MatchesPlayed int64   `json:"matches_played"`
	TotalScore    int64   `json:"total_score"`

	// Error is set when the API answered with an error marker instead of stats.
	Error json.RawMessage `json:"error,omitempty"`
}

// HasError reports whether the response carried an "error" key.
func (g *GameStat) HasError() bool {
	return len(g.Error) > 0
}
