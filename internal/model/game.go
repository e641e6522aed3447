package model

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/wizardchess/magic-chess-backend/internal/ai"
	"github.com/wizardchess/magic-chess-backend/internal/engine"
	"github.com/wizardchess/magic-chess-backend/internal/ws"
)

// The connections for a specific game
type GameConnections struct {
	connections map[string]*websocket.Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*websocket.Conn),
	}
}

// MagicUsage is the per-color single-use flag for the magic move.
type MagicUsage struct {
	White bool `json:"white"`
	Black bool `json:"black"`
}

// ClientPiece is the wire representation of a board cell's occupant.
type ClientPiece struct {
	ID    int              `json:"id"`
	Type  engine.PieceType `json:"type"`
	Color engine.Color     `json:"color"`
}

type CapturedPieces struct {
	White []engine.Piece `json:"white"` // pieces White has captured
	Black []engine.Piece `json:"black"`
}

type GamePlayers struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// GameState is the full wire snapshot broadcast to every connection after
// each ply. Board is indexed [row][column] with row 0 = rank 1.
type GameState struct {
	Board          [][]*ClientPiece `json:"board"`
	ToMove         engine.Color     `json:"toMove"`
	MoveHistory    []HistoryEntry   `json:"moveHistory"`
	CapturedPieces CapturedPieces   `json:"capturedPieces"`
	IsCheck        bool             `json:"isCheck"`
	Resolve        *string          `json:"resolve"`
	MagicUsed      MagicUsage       `json:"magicUsed"`
	LastMove       *engine.Move     `json:"lastMove"`
	Players        GamePlayers      `json:"players"`
}

// Game serializes all access to a single match. The rules engine is pure;
// the Game owns the current and previous board snapshots, the last move
// record that feeds the magic-move validator, and the single-use flags.
type Game struct {
	ID string

	mu        sync.Mutex
	board     *engine.Board
	prevBoard *engine.Board      // state before the last board move, nil after a magic move
	lastMove  *engine.MoveRecord // nil after a magic move
	toMove    engine.Color
	magicUsed map[engine.Color]bool
	history   []HistoryEntry
	captured  CapturedPieces
	resolve   *string
	players   GamePlayers

	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock

	bot       ai.Bot // plays Black when set
	onResolve func(Resolution)

	logger *zap.Logger
}

func NewGame(id string, initialTime time.Duration, logger *zap.Logger) *Game {
	return &Game{
		ID:          id,
		board:       engine.NewGame(),
		toMove:      engine.White,
		magicUsed:   map[engine.Color]bool{},
		history:     []HistoryEntry{},
		captured:    CapturedPieces{White: []engine.Piece{}, Black: []engine.Piece{}},
		connections: NewGameConnections(),
		whiteClock:  NewClock(initialTime),
		blackClock:  NewClock(initialTime),
		logger:      logger.With(zap.String("game_id", id)),
	}
}

// AttachBot seats bot as Black. Must be called before Black's first turn.
func (g *Game) AttachBot(bot ai.Bot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.bot = bot
	g.players.Black = ClientPlayer{
		ID:    "bot:" + bot.Name(),
		Color: engine.Black,
	}
}

// SetResolveHook installs a callback invoked once when the game resolves.
func (g *Game) SetResolveHook(fn func(Resolution)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onResolve = fn
}

func (g *Game) AddPlayer(playerID string, rating int) (engine.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.players.White.ID == "" {
		g.players.White = ClientPlayer{ID: playerID, Color: engine.White, Rating: rating}
		return engine.White, nil
	}
	if g.players.Black.ID == "" {
		g.players.Black = ClientPlayer{ID: playerID, Color: engine.Black, Rating: rating}
		return engine.Black, nil
	}
	return engine.White, ErrGameFull
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() GameState {
	board := make([][]*ClientPiece, 8)
	for y := 1; y <= 8; y++ {
		board[y-1] = make([]*ClientPiece, 8)
		for x := 1; x <= 8; x++ {
			if p, ok := g.board.PieceAt(engine.Square{X: x, Y: y}); ok {
				board[y-1][x-1] = &ClientPiece{ID: p.ID, Type: p.Type, Color: p.Color}
			}
		}
	}

	var last *engine.Move
	if g.lastMove != nil {
		last = &engine.Move{From: g.lastMove.From, To: g.lastMove.To}
	}

	players := g.players
	players.White.TimeLeft = int(g.whiteClock.GetTimeLeft().Milliseconds())
	players.Black.TimeLeft = int(g.blackClock.GetTimeLeft().Milliseconds())

	return GameState{
		Board:          board,
		ToMove:         g.toMove,
		MoveHistory:    append([]HistoryEntry{}, g.history...),
		CapturedPieces: g.captured,
		IsCheck:        g.board.IsCheck(g.toMove),
		Resolve:        g.resolve,
		MagicUsed:      MagicUsage{White: g.magicUsed[engine.White], Black: g.magicUsed[engine.Black]},
		LastMove:       last,
		Players:        players,
	}
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isPlayerInGame(playerID)
}

func (g *Game) isPlayerInGame(playerID string) bool {
	if g.players.White.ID != "" && g.players.White.ID == playerID {
		return true
	}
	if g.players.Black.ID != "" && g.players.Black.ID == playerID {
		return true
	}
	return false
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.players.White.ID == "" || g.players.Black.ID == ""
}

func (g *Game) playerColor(playerID string) (engine.Color, bool) {
	if g.players.White.ID == playerID {
		return engine.White, true
	}
	if g.players.Black.ID == playerID {
		return engine.Black, true
	}
	return engine.White, false
}

// MakeMove validates and applies a board move for playerID, then lets the
// bot answer if one is seated.
func (g *Game) MakeMove(playerID string, move WSMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, err := g.checkTurn(playerID)
	if err != nil {
		return err
	}

	// Promotion is raw client input; the engine trusts its caller to have
	// screened it. A pawn may never promote to a king or stay a pawn.
	switch move.Promotion {
	case engine.NoPieceType, engine.Queen, engine.Rook, engine.Bishop, engine.Knight:
	default:
		return fmt.Errorf("%w: invalid promotion %q", ErrIllegalMove, move.Promotion)
	}

	legal, reason := g.board.IsMoveLegal(move.From, move.To, color)
	if !legal {
		return fmt.Errorf("%w: %s", ErrIllegalMove, reason)
	}

	g.applyMoveLocked(move.From, move.To, move.Promotion, color)
	g.maybeBotReplyLocked()

	go g.broadcastState()
	return nil
}

// MakeMagicMove validates and applies a one-shot transformation. A magic
// move consumes the acting player's turn.
func (g *Game) MakeMagicMove(playerID string, move WSMagicMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, err := g.checkTurn(playerID)
	if err != nil {
		return err
	}
	if g.magicUsed[color] {
		return ErrMagicAlreadyUsed
	}

	ok, reason, next := g.board.ApplyMagicMove(move.Action, move.Target, move.NewType, color, g.lastMove, g.prevBoard)
	if !ok {
		return fmt.Errorf("%w: %s", ErrIllegalMagicMove, reason)
	}

	// A relocation leaves the target square empty.
	_, stillThere := next.PieceAt(move.Target)
	record := &MagicRecord{
		Action:   move.Action,
		Target:   move.Target,
		NewType:  move.NewType,
		Reverted: !stillThere,
	}

	g.magicUsed[color] = true
	g.board = next
	// The magic action replaces the ply; the next downgrade has no
	// preceding board move to reverse against.
	g.prevBoard = nil
	g.lastMove = nil

	notation := fmt.Sprintf("%s%s=%s", move.Target, magicMark(move.Action), move.NewType.Letter())
	g.history = append(g.history, HistoryEntry{Color: color, Notation: notation, Magic: record})

	g.finishPlyLocked(color)
	g.maybeBotReplyLocked()

	go g.broadcastState()
	return nil
}

// Resign ends the game in favor of the opponent.
func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.playerColor(playerID)
	if !ok {
		return ErrNotInGame
	}
	if g.resolve != nil {
		return ErrGameOver
	}

	result := "resignation"
	g.resolve = &result
	g.whiteClock.Stop()
	g.blackClock.Stop()
	g.fireResolveLocked(color.Opposite(), false)

	go g.broadcastState()
	return nil
}

func (g *Game) checkTurn(playerID string) (engine.Color, error) {
	if g.resolve != nil {
		return engine.White, ErrGameOver
	}
	color, ok := g.playerColor(playerID)
	if !ok {
		return engine.White, ErrNotInGame
	}
	if color != g.toMove {
		return engine.White, ErrNotYourTurn
	}
	return color, nil
}

func (g *Game) applyMoveLocked(from, to engine.Square, promotion engine.PieceType, color engine.Color) {
	prev := g.board
	next, moved, capturedPiece := g.board.ApplyMove(from, to, promotion)

	notation := g.moveNotation(from, to, moved, capturedPiece)

	g.prevBoard = prev
	g.board = next
	g.lastMove = &engine.MoveRecord{PieceID: moved.ID, From: from, To: to, Captured: capturedPiece}

	if capturedPiece != nil {
		switch color {
		case engine.White:
			g.captured.White = append(g.captured.White, *capturedPiece)
		case engine.Black:
			g.captured.Black = append(g.captured.Black, *capturedPiece)
		}
	}

	fromCopy, toCopy := from, to
	g.history = append(g.history, HistoryEntry{
		Color:    color,
		Notation: notation,
		From:     &fromCopy,
		To:       &toCopy,
	})

	g.finishPlyLocked(color)
}

// finishPlyLocked swaps clocks, passes the turn and resolves the game if
// the side to move has no legal reply.
func (g *Game) finishPlyLocked(mover engine.Color) {
	if mover == engine.White {
		g.whiteClock.Stop()
		g.blackClock.Start()
	} else {
		g.blackClock.Stop()
		g.whiteClock.Start()
	}

	g.toMove = mover.Opposite()

	switch {
	case g.board.IsCheckmate(g.toMove):
		result := "checkmate"
		g.resolve = &result
		g.whiteClock.Stop()
		g.blackClock.Stop()
		g.fireResolveLocked(mover, false)
	case g.board.IsStalemate(g.toMove):
		result := "stalemate"
		g.resolve = &result
		g.whiteClock.Stop()
		g.blackClock.Stop()
		g.fireResolveLocked(mover, true)
	}
}

func (g *Game) fireResolveLocked(winner engine.Color, draw bool) {
	g.logger.Info("game resolved",
		zap.Stringp("result", g.resolve),
		zap.String("winner", winner.String()),
		zap.Bool("draw", draw),
	)
	if g.onResolve == nil {
		return
	}
	res := Resolution{Result: *g.resolve, Draw: draw}
	if winner == engine.White {
		res.WinnerID = g.players.White.ID
		res.LoserID = g.players.Black.ID
	} else {
		res.WinnerID = g.players.Black.ID
		res.LoserID = g.players.White.ID
	}
	go g.onResolve(res)
}

// maybeBotReplyLocked lets a seated bot answer for Black.
func (g *Game) maybeBotReplyLocked() {
	if g.bot == nil || g.resolve != nil || g.toMove != engine.Black {
		return
	}
	mv, ok := g.bot.BestMove(g.board, engine.Black)
	if !ok {
		// No legal move means the position already resolved above.
		return
	}
	g.applyMoveLocked(mv.From, mv.To, engine.NoPieceType, engine.Black)
}

// moveNotation must be called before the move is applied to g.board.
func (g *Game) moveNotation(from, to engine.Square, moved engine.Piece, captured *engine.Piece) string {
	pieceBefore, _ := g.board.PieceAt(from)
	prefix := pieceBefore.Type.Letter()
	capture := ""
	if captured != nil {
		capture = "x"
		if pieceBefore.Type == engine.Pawn {
			prefix = from.String()[:1]
		}
	}
	suffix := ""
	if pieceBefore.Type == engine.Pawn && moved.Type != engine.Pawn {
		suffix = "=" + moved.Type.Letter()
	}
	return fmt.Sprintf("%s%s%s%s", prefix, capture, to, suffix)
}

func magicMark(action engine.MagicAction) string {
	if action == engine.ActionUpgrade {
		return "^"
	}
	return "v"
}

func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotInGame
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the healthy connection and reject the new one.
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "connection already exists"),
		)
		conn.Close()
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()

	g.logger.Debug("connection registered", zap.String("player_id", playerID))

	go g.broadcastState()
	return nil
}

func (g *Game) UnregisterConnection(playerID string) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	delete(g.connections.connections, playerID)
}

func (g *Game) broadcastState() {
	state := g.GetState()

	payload, err := json.Marshal(state)
	if err != nil {
		g.logger.Error("failed to marshal game state", zap.Error(err))
		return
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	for playerID, conn := range g.connections.connections {
		if err := conn.WriteJSON(ws.Message{
			Type:    ws.MessageTypeGameState,
			Payload: json.RawMessage(payload),
		}); err != nil {
			g.logger.Warn("failed to send state, dropping connection",
				zap.String("player_id", playerID),
				zap.Error(err),
			)
			delete(g.connections.connections, playerID)
		}
	}
}
