package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wizardchess/magic-chess-backend/internal/service"
)

// matchWaitTimeout bounds the matchmaking long-poll.
const matchWaitTimeout = 25 * time.Second

type GameController struct {
	gameService *service.GameService
	logger      *zap.Logger
}

func NewGameController(gameService *service.GameService, logger *zap.Logger) *GameController {
	return &GameController{gameService: gameService, logger: logger}
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) CreateBotGame(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	gameID, err := gc.gameService.CreateBotGame(playerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Bot game created",
		"game_id": gameID,
		"color":   "white",
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	gameState, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch game state",
		})
	}

	return c.JSON(gameState)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

// WaitForMatch long-polls until matchmaking pairs the player or the
// request times out; clients retry on 204.
func (gc *GameController) WaitForMatch(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	ch := make(chan string, 1)
	gc.gameService.RegisterMatchmakingChannel(playerID, ch)
	defer gc.gameService.UnregisterMatchmakingChannel(playerID)

	select {
	case payload, ok := <-ch:
		if !ok {
			return c.SendStatus(fiber.StatusNoContent)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(payload)
	case <-time.After(matchWaitTimeout):
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	gc.gameService.LeaveMatchmaking(playerID)
	gc.gameService.UnregisterMatchmakingChannel(playerID)

	return c.JSON(fiber.Map{
		"status": "left",
	})
}

func (gc *GameController) GetPlayerProfile(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	profile, err := gc.gameService.GetPlayerProfile(playerID)
	if err != nil {
		gc.logger.Warn("failed to load player profile",
			zap.String("player_id", playerID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch player profile",
		})
	}

	return c.JSON(profile)
}
