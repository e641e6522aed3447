package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wizardchess/magic-chess-backend/internal/ai"
	"github.com/wizardchess/magic-chess-backend/internal/engine"
	"github.com/wizardchess/magic-chess-backend/internal/model"
	"github.com/wizardchess/magic-chess-backend/internal/rating"
	"github.com/wizardchess/magic-chess-backend/internal/store"
)

var ErrGameNotFound = errors.New("game not found")

// GameManager owns every live game, the matchmaking queue and the
// per-player matchmaking notification channels.
type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	mu               sync.RWMutex

	initialClock time.Duration
	matchTick    time.Duration
	players      *store.PlayerStore // nil when persistence is disabled
	logger       *zap.Logger
}

func NewGameManager(initialClock, matchTick time.Duration, players *store.PlayerStore, logger *zap.Logger) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		initialClock:     initialClock,
		matchTick:        matchTick,
		players:          players,
		logger:           logger,
	}

	go gm.processMatchmaking()

	return gm
}

// newGame constructs a game and wires rating settlement when a store is
// configured.
func (gm *GameManager) newGame(gameID string) *model.Game {
	game := model.NewGame(gameID, gm.initialClock, gm.logger)
	if gm.players != nil {
		game.SetResolveHook(gm.settleRatings)
	}
	return game
}

func (gm *GameManager) settleRatings(res model.Resolution) {
	// Bot seats are not rated.
	if res.WinnerID == "" || res.LoserID == "" ||
		isBotID(res.WinnerID) || isBotID(res.LoserID) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := gm.players.ApplyResult(ctx, res.WinnerID, res.LoserID, res.Draw); err != nil {
		gm.logger.Error("failed to settle ratings",
			zap.String("winner", res.WinnerID),
			zap.String("loser", res.LoserID),
			zap.Error(err),
		)
	}
}

func isBotID(id string) bool {
	return strings.HasPrefix(id, "bot:")
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return errors.New("game already exists")
	}

	gm.games[gameID] = gm.newGame(gameID)
	return nil
}

// CreateBotGame seats playerID as White against the greedy bot.
func (gm *GameManager) CreateBotGame(playerID string) (string, error) {
	gameID := uuid.New().String()
	game := gm.newGame(gameID)

	if _, err := game.AddPlayer(playerID, gm.lookupRating(playerID)); err != nil {
		return "", err
	}
	game.AttachBot(ai.NewGreedy(time.Now().UnixNano()))

	gm.mu.Lock()
	gm.games[gameID] = game
	gm.mu.Unlock()

	gm.logger.Info("bot game created",
		zap.String("game_id", gameID),
		zap.String("player_id", playerID),
	)
	return gameID, nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (engine.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return engine.White, err
	}
	return game.AddPlayer(playerID, gm.lookupRating(playerID))
}

// lookupRating fetches (or initializes) the player's persisted rating, or
// returns the default when persistence is disabled.
func (gm *GameManager) lookupRating(playerID string) int {
	if gm.players == nil {
		return rating.Default
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	profile, err := gm.players.GetOrCreate(ctx, playerID)
	if err != nil {
		gm.logger.Warn("failed to load player rating",
			zap.String("player_id", playerID),
			zap.Error(err),
		)
		return rating.Default
	}
	return profile.Rating
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID, Rating: gm.lookupRating(playerID)})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) {
	gm.queue.Remove(playerID)
}

// processMatchmaking pairs the two longest-waiting players on every tick
// and pushes a MatchFoundEvent to each one's registered channel.
func (gm *GameManager) processMatchmaking() {
	ticker := time.NewTicker(gm.matchTick)
	defer ticker.Stop()

	for range ticker.C {
		for gm.queue.Size() >= 2 {
			player1, player2 := gm.queue.GetNextPair()

			gameID := uuid.New().String()
			game := gm.newGame(gameID)

			p1Color, err := game.AddPlayer(player1.ID, player1.Rating)
			if err != nil {
				gm.logger.Error("failed to seat player", zap.Error(err))
				continue
			}
			p2Color, err := game.AddPlayer(player2.ID, player2.Rating)
			if err != nil {
				gm.logger.Error("failed to seat player", zap.Error(err))
				continue
			}

			gm.mu.Lock()
			gm.games[gameID] = game
			gm.notifyMatchLocked(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
			gm.notifyMatchLocked(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
			gm.mu.Unlock()

			gm.logger.Info("match created",
				zap.String("game_id", gameID),
				zap.String("white", player1.ID),
				zap.String("black", player2.ID),
			)
		}
	}
}

func (gm *GameManager) notifyMatchLocked(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		gm.logger.Error("failed to marshal match event", zap.Error(err))
		return
	}
	select {
	case ch <- string(payload):
		delete(gm.matchingChannels, playerID)
		close(ch)
	default:
		gm.logger.Warn("match notification channel full",
			zap.String("player_id", playerID),
		)
	}
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// Routing stops here; the channel is closed by whoever fills it.
	delete(gm.matchingChannels, playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) MakeMagicMove(gameID string, playerID string, move model.WSMagicMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMagicMove(playerID, move)
}

func (gm *GameManager) Resign(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Resign(playerID)
}

func (gm *GameManager) GetPlayerProfile(playerID string) (store.PlayerProfile, error) {
	if gm.players == nil {
		return store.PlayerProfile{ID: playerID, Rating: rating.Default}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return gm.players.GetOrCreate(ctx, playerID)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID)
}
