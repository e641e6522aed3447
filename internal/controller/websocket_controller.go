package controller

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/wizardchess/magic-chess-backend/internal/model"
	"github.com/wizardchess/magic-chess-backend/internal/service"
	"github.com/wizardchess/magic-chess-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
	logger      *zap.Logger
}

func NewWebSocketController(gameService *service.GameService, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		logger:      logger,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		wsc.logger.Warn("failed to register connection",
			zap.String("game_id", gameID),
			zap.String("player_id", playerID),
			zap.Error(err),
		)
		c.Close()
		return
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			wsc.logger.Debug("read error, closing connection",
				zap.String("player_id", playerID),
				zap.Error(err),
			)
			break
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.logger.Warn("unparseable message", zap.Error(err))
			continue
		}

		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			wsc.sendError(c, err.Error())
		}
	}

	wsc.gameService.UnregisterConnection(gameID, playerID)
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMove(gameID, playerID, move)

	case ws.MessageTypeMagicMove:
		var move model.WSMagicMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMagicMove(gameID, playerID, move)

	case ws.MessageTypeResign:
		return wsc.gameService.HandleResign(gameID, playerID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(c *websocket.Conn, errorMsg string) {
	payload, err := json.Marshal(fiberMapError{Error: errorMsg})
	if err != nil {
		return
	}
	c.WriteJSON(ws.Message{
		Type:    ws.MessageTypeError,
		Payload: json.RawMessage(payload),
	})
}

type fiberMapError struct {
	Error string `json:"error"`
}
