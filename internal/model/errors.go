package model

import "errors"

var (
	ErrGameFull         = errors.New("game is full")
	ErrGameOver         = errors.New("game already resolved")
	ErrNotInGame        = errors.New("player not in game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrIllegalMove      = errors.New("illegal move")
	ErrIllegalMagicMove = errors.New("illegal magic move")
	ErrMagicAlreadyUsed = errors.New("magic move already used")
)
