package model

import "github.com/wizardchess/magic-chess-backend/internal/engine"

// MatchFoundEvent is pushed to a queued player when matchmaking pairs them.
type MatchFoundEvent struct {
	GameID string       `json:"gameId"`
	Color  engine.Color `json:"color"`
}

// Resolution describes a finished game for rating settlement.
type Resolution struct {
	Result   string
	WinnerID string
	LoserID  string
	Draw     bool
}
