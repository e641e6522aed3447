package model

import "github.com/wizardchess/magic-chess-backend/internal/engine"

type Player struct {
	ID     string
	Rating int
}

// ClientPlayer is the wire representation of a seated player.
type ClientPlayer struct {
	ID       string       `json:"id"`
	Color    engine.Color `json:"color"`
	TimeLeft int          `json:"timeLeft"`
	Rating   int          `json:"rating"`
}
