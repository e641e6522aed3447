package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wizardchess/magic-chess-backend/internal/ai"
	"github.com/wizardchess/magic-chess-backend/internal/engine"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("test-game", 10*time.Minute, zap.NewNop())
	_, err := g.AddPlayer("alice", 1200)
	require.NoError(t, err)
	_, err = g.AddPlayer("bob", 1200)
	require.NoError(t, err)
	return g
}

func TestAddPlayerAssignsColorsInOrder(t *testing.T) {
	g := NewGame("g", time.Minute, zap.NewNop())

	color, err := g.AddPlayer("alice", 1200)
	require.NoError(t, err)
	assert.Equal(t, engine.White, color)

	color, err = g.AddPlayer("bob", 1300)
	require.NoError(t, err)
	assert.Equal(t, engine.Black, color)

	_, err = g.AddPlayer("carol", 1400)
	assert.ErrorIs(t, err, ErrGameFull)
}

func TestMakeMoveEnforcesTurnOrder(t *testing.T) {
	g := newTestGame(t)

	err := g.MakeMove("bob", WSMove{From: engine.Square{X: 5, Y: 7}, To: engine.Square{X: 5, Y: 5}})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	err = g.MakeMove("mallory", WSMove{From: engine.Square{X: 5, Y: 2}, To: engine.Square{X: 5, Y: 4}})
	assert.ErrorIs(t, err, ErrNotInGame)

	err = g.MakeMove("alice", WSMove{From: engine.Square{X: 5, Y: 2}, To: engine.Square{X: 5, Y: 4}})
	require.NoError(t, err)

	state := g.GetState()
	assert.Equal(t, engine.Black, state.ToMove)
	assert.Len(t, state.MoveHistory, 1)
}

func TestMakeMoveRejectsIllegalMoves(t *testing.T) {
	g := newTestGame(t)

	err := g.MakeMove("alice", WSMove{From: engine.Square{X: 5, Y: 2}, To: engine.Square{X: 5, Y: 5}})
	assert.ErrorIs(t, err, ErrIllegalMove)

	// Refusal leaves the game untouched.
	state := g.GetState()
	assert.Equal(t, engine.White, state.ToMove)
	assert.Empty(t, state.MoveHistory)
}

func TestMakeMoveRejectsDisallowedPromotionTypes(t *testing.T) {
	g := newTestGame(t)

	// March the a-pawn to the back rank while Black shuffles the h-pawn.
	script := []struct {
		player string
		move   WSMove
	}{
		{"alice", WSMove{From: engine.Square{X: 1, Y: 2}, To: engine.Square{X: 1, Y: 4}}},
		{"bob", WSMove{From: engine.Square{X: 8, Y: 7}, To: engine.Square{X: 8, Y: 6}}},
		{"alice", WSMove{From: engine.Square{X: 1, Y: 4}, To: engine.Square{X: 1, Y: 5}}},
		{"bob", WSMove{From: engine.Square{X: 8, Y: 6}, To: engine.Square{X: 8, Y: 5}}},
		{"alice", WSMove{From: engine.Square{X: 1, Y: 5}, To: engine.Square{X: 1, Y: 6}}},
		{"bob", WSMove{From: engine.Square{X: 8, Y: 5}, To: engine.Square{X: 8, Y: 4}}},
		{"alice", WSMove{From: engine.Square{X: 1, Y: 6}, To: engine.Square{X: 2, Y: 7}}},
		{"bob", WSMove{From: engine.Square{X: 8, Y: 4}, To: engine.Square{X: 8, Y: 3}}},
	}
	for _, step := range script {
		require.NoError(t, g.MakeMove(step.player, step.move))
	}

	capture := WSMove{From: engine.Square{X: 2, Y: 7}, To: engine.Square{X: 1, Y: 8}}

	capture.Promotion = engine.King
	err := g.MakeMove("alice", capture)
	assert.ErrorIs(t, err, ErrIllegalMove)

	capture.Promotion = engine.Pawn
	err = g.MakeMove("alice", capture)
	assert.ErrorIs(t, err, ErrIllegalMove)

	// The refusals left the pawn where it was and the turn with White.
	state := g.GetState()
	assert.Equal(t, engine.White, state.ToMove)
	require.NotNil(t, state.Board[6][1])
	assert.Equal(t, engine.Pawn, state.Board[6][1].Type)

	capture.Promotion = engine.NoPieceType
	require.NoError(t, g.MakeMove("alice", capture))

	state = g.GetState()
	require.NotNil(t, state.Board[7][0])
	assert.Equal(t, engine.Queen, state.Board[7][0].Type)

	whiteKings := 0
	for _, row := range state.Board {
		for _, p := range row {
			if p != nil && p.Type == engine.King && p.Color == engine.White {
				whiteKings++
			}
		}
	}
	assert.Equal(t, 1, whiteKings)
}

func TestMagicMoveIsSingleUsePerColor(t *testing.T) {
	g := newTestGame(t)

	err := g.MakeMagicMove("alice", WSMagicMove{
		Action:  engine.ActionUpgrade,
		Target:  engine.Square{X: 5, Y: 2},
		NewType: engine.Knight,
	})
	require.NoError(t, err)

	state := g.GetState()
	assert.True(t, state.MagicUsed.White)
	assert.False(t, state.MagicUsed.Black)
	assert.Equal(t, engine.Black, state.ToMove, "a magic move consumes the turn")

	// Black replies with an ordinary move.
	require.NoError(t, g.MakeMove("bob", WSMove{From: engine.Square{X: 5, Y: 7}, To: engine.Square{X: 5, Y: 5}}))

	// White's second magic move is refused.
	err = g.MakeMagicMove("alice", WSMagicMove{
		Action:  engine.ActionUpgrade,
		Target:  engine.Square{X: 4, Y: 2},
		NewType: engine.Knight,
	})
	assert.ErrorIs(t, err, ErrMagicAlreadyUsed)

	// Black still has one.
	require.NoError(t, g.MakeMove("alice", WSMove{From: engine.Square{X: 4, Y: 2}, To: engine.Square{X: 4, Y: 4}}))
	err = g.MakeMagicMove("bob", WSMagicMove{
		Action:  engine.ActionDowngrade,
		Target:  engine.Square{X: 1, Y: 1},
		NewType: engine.Bishop,
	})
	require.NoError(t, err)
	assert.True(t, g.GetState().MagicUsed.Black)
}

func TestMagicMoveValidationErrorsAreReported(t *testing.T) {
	g := newTestGame(t)

	err := g.MakeMagicMove("alice", WSMagicMove{
		Action:  engine.ActionUpgrade,
		Target:  engine.Square{X: 5, Y: 1},
		NewType: engine.Rook,
	})
	assert.ErrorIs(t, err, ErrIllegalMagicMove)

	state := g.GetState()
	assert.False(t, state.MagicUsed.White, "a refused magic move is not consumed")
	assert.Equal(t, engine.White, state.ToMove)
}

func TestResignResolvesGame(t *testing.T) {
	g := newTestGame(t)

	var got Resolution
	done := make(chan struct{})
	g.SetResolveHook(func(res Resolution) {
		got = res
		close(done)
	})

	require.NoError(t, g.Resign("bob"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("resolve hook not called")
	}
	assert.Equal(t, "resignation", got.Result)
	assert.Equal(t, "alice", got.WinnerID)
	assert.Equal(t, "bob", got.LoserID)
	assert.False(t, got.Draw)

	state := g.GetState()
	require.NotNil(t, state.Resolve)
	assert.Equal(t, "resignation", *state.Resolve)

	err := g.MakeMove("alice", WSMove{From: engine.Square{X: 5, Y: 2}, To: engine.Square{X: 5, Y: 4}})
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestBotAnswersImmediately(t *testing.T) {
	g := NewGame("bot-game", time.Minute, zap.NewNop())
	_, err := g.AddPlayer("alice", 1200)
	require.NoError(t, err)
	g.AttachBot(ai.NewGreedy(1))

	require.NoError(t, g.MakeMove("alice", WSMove{From: engine.Square{X: 5, Y: 2}, To: engine.Square{X: 5, Y: 4}}))

	state := g.GetState()
	assert.Len(t, state.MoveHistory, 2, "bot reply recorded in the same request")
	assert.Equal(t, engine.White, state.ToMove)
	assert.Equal(t, engine.Black, state.MoveHistory[1].Color)
}

func TestGameStateSnapshotIsDetached(t *testing.T) {
	g := newTestGame(t)
	before := g.GetState()

	require.NoError(t, g.MakeMove("alice", WSMove{From: engine.Square{X: 5, Y: 2}, To: engine.Square{X: 5, Y: 4}}))

	// The earlier snapshot still shows the pawn on its home square.
	require.NotNil(t, before.Board[1][4])
	assert.Equal(t, engine.Pawn, before.Board[1][4].Type)
	assert.Nil(t, before.Board[3][4])

	after := g.GetState()
	assert.Nil(t, after.Board[1][4])
	require.NotNil(t, after.Board[3][4])
	assert.Equal(t, engine.Pawn, after.Board[3][4].Type)
}
