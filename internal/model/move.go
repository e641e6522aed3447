package model

import "github.com/wizardchess/magic-chess-backend/internal/engine"

// WSMove is an incoming move request from a client.
type WSMove struct {
	From      engine.Square    `json:"from"`
	To        engine.Square    `json:"to"`
	Promotion engine.PieceType `json:"promotion,omitempty"`
}

// WSMagicMove is an incoming magic-move request from a client.
type WSMagicMove struct {
	Action  engine.MagicAction `json:"action"`
	Target  engine.Square      `json:"target"`
	NewType engine.PieceType   `json:"newType"`
}

// MagicRecord is the history entry payload for a magic move. Reverted is
// set when the soft time-reversal rule sent the piece back to its origin.
type MagicRecord struct {
	Action   engine.MagicAction `json:"action"`
	Target   engine.Square      `json:"target"`
	NewType  engine.PieceType   `json:"newType"`
	Reverted bool               `json:"reverted"`
}

// HistoryEntry is one ply of the game record: either a board move or a
// magic move, which also consumes the player's turn.
type HistoryEntry struct {
	Color    engine.Color   `json:"color"`
	Notation string         `json:"notation"`
	From     *engine.Square `json:"from,omitempty"`
	To       *engine.Square `json:"to,omitempty"`
	Magic    *MagicRecord   `json:"magic,omitempty"`
}
