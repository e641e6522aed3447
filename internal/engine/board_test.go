package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameStartingPosition(t *testing.T) {
	b := NewGame()

	assert.Equal(t, 16, b.Count(White))
	assert.Equal(t, 16, b.Count(Black))

	whiteKing, ok := b.FindKing(White)
	require.True(t, ok)
	assert.Equal(t, Square{X: 5, Y: 1}, whiteKing)

	blackKing, ok := b.FindKing(Black)
	require.True(t, ok)
	assert.Equal(t, Square{X: 5, Y: 8}, blackKing)

	backRank := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for x := 1; x <= 8; x++ {
		p, ok := b.PieceAt(Square{X: x, Y: 1})
		require.True(t, ok)
		assert.Equal(t, backRank[x-1], p.Type)
		assert.Equal(t, White, p.Color)

		p, ok = b.PieceAt(Square{X: x, Y: 2})
		require.True(t, ok)
		assert.Equal(t, Pawn, p.Type)
		assert.Equal(t, White, p.Color)

		p, ok = b.PieceAt(Square{X: x, Y: 7})
		require.True(t, ok)
		assert.Equal(t, Pawn, p.Type)
		assert.Equal(t, Black, p.Color)

		p, ok = b.PieceAt(Square{X: x, Y: 8})
		require.True(t, ok)
		assert.Equal(t, backRank[x-1], p.Type)
		assert.Equal(t, Black, p.Color)
	}
}

func TestNewGamePieceIDsUnique(t *testing.T) {
	b := NewGame()
	seen := map[int]bool{}
	for y := 1; y <= 8; y++ {
		for x := 1; x <= 8; x++ {
			p, ok := b.PieceAt(Square{X: x, Y: y})
			if !ok {
				continue
			}
			assert.False(t, seen[p.ID], "duplicate piece id %d", p.ID)
			seen[p.ID] = true
		}
	}
	assert.Len(t, seen, 32)
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewGame()
	clone := b.Clone()

	// Move a pawn on the clone by hand; the original must not notice.
	p := clone.pieceAt(Square{X: 5, Y: 2})
	require.NotNil(t, p)
	clone.setPiece(Square{X: 5, Y: 2}, nil)
	clone.setPiece(Square{X: 5, Y: 4}, p)
	p.Type = Queen

	orig, ok := b.PieceAt(Square{X: 5, Y: 2})
	require.True(t, ok)
	assert.Equal(t, Pawn, orig.Type)
	_, occupied := b.PieceAt(Square{X: 5, Y: 4})
	assert.False(t, occupied)
}

func TestApplyMoveDoesNotMutateInput(t *testing.T) {
	b := NewGame()
	after, moved, captured := b.ApplyMove(Square{X: 5, Y: 2}, Square{X: 5, Y: 4}, NoPieceType)

	assert.Nil(t, captured)
	assert.Equal(t, Pawn, moved.Type)

	_, stillThere := b.PieceAt(Square{X: 5, Y: 2})
	assert.True(t, stillThere, "input board must keep its pawn on e2")

	p, ok := after.PieceAt(Square{X: 5, Y: 4})
	require.True(t, ok)
	assert.Equal(t, moved.ID, p.ID)
}

func TestEmptyBoardHasNoCheck(t *testing.T) {
	b := NewEmptyBoard()
	assert.False(t, b.IsCheck(White))
	assert.False(t, b.IsCheck(Black))
	assert.False(t, b.IsCheckmate(White))
}
