package service

import (
	"fmt"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/wizardchess/magic-chess-backend/internal/engine"
	"github.com/wizardchess/magic-chess-backend/internal/model"
	"github.com/wizardchess/magic-chess-backend/internal/store"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) CreateBotGame(playerID string) (string, error) {
	return gs.gameManager.CreateBotGame(playerID)
}

func (gs *GameService) JoinGame(gameID string, playerID string) (engine.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) {
	gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) GetPlayerProfile(playerID string) (store.PlayerProfile, error) {
	return gs.gameManager.GetPlayerProfile(playerID)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.WSMove) error {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) HandleMagicMove(gameID string, playerID string, move model.WSMagicMove) error {
	return gs.gameManager.MakeMagicMove(gameID, playerID, move)
}

func (gs *GameService) HandleResign(gameID string, playerID string) error {
	return gs.gameManager.Resign(gameID, playerID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string) {
	gs.gameManager.UnregisterConnection(gameID, playerID)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID)
}
