package ranked

import "errors"

var (
	// ErrNotFound is returned for a 404 from the ranked API.
	ErrNotFound = errors.New("ranked api: not found")
	// ErrNoGameData is returned when a per-game lookup answers with an error marker.
	ErrNoGameData = errors.New("ranked api: no data for game")
	// ErrRateLimited is returned for a 429 from the ranked API.
	ErrRateLimited = errors.New("ranked api: rate limited")
	// ErrServer is returned for any 5xx from the ranked API.
	ErrServer = errors.New("ranked api: server error")
	// ErrTooLarge is returned when a downloaded image exceeds MaxImageBytes.
	ErrTooLarge = errors.New("ranked api: response too large")
)
