package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMoveLegalFromStartingPosition(t *testing.T) {
	tests := []struct {
		name   string
		from   Square
		to     Square
		color  Color
		legal  bool
		reason Reason
	}{
		{"pawn single push", Square{5, 2}, Square{5, 3}, White, true, ReasonNone},
		{"pawn double push", Square{5, 2}, Square{5, 4}, White, true, ReasonNone},
		{"pawn triple push", Square{5, 2}, Square{5, 5}, White, false, ReasonPatternViolation},
		{"pawn diagonal to empty", Square{5, 2}, Square{4, 3}, White, false, ReasonPatternViolation},
		{"knight jump", Square{2, 1}, Square{3, 3}, White, true, ReasonNone},
		{"knight to own pawn", Square{2, 1}, Square{4, 2}, White, false, ReasonPatternViolation},
		{"bishop through pawn", Square{3, 1}, Square{5, 3}, White, false, ReasonPathBlocked},
		{"rook through pawn", Square{1, 1}, Square{1, 3}, White, false, ReasonPathBlocked},
		{"rook onto own pawn", Square{1, 1}, Square{1, 2}, White, false, ReasonPathBlocked},
		{"queen diagonal through pawn", Square{4, 1}, Square{8, 5}, White, false, ReasonPathBlocked},
		{"queen onto own pawn", Square{4, 1}, Square{4, 2}, White, false, ReasonPathBlocked},
		{"king two squares", Square{5, 1}, Square{5, 3}, White, false, ReasonPatternViolation},
		{"king onto own pawn", Square{5, 1}, Square{5, 2}, White, false, ReasonPatternViolation},
		{"empty origin", Square{5, 4}, Square{5, 5}, White, false, ReasonInvalidSquare},
		{"origin off board", Square{0, 2}, Square{1, 3}, White, false, ReasonInvalidSquare},
		{"destination off board", Square{1, 2}, Square{1, 9}, White, false, ReasonInvalidSquare},
		{"black piece moved as white", Square{5, 7}, Square{5, 5}, White, false, ReasonWrongColor},
		{"black pawn push", Square{5, 7}, Square{5, 5}, Black, true, ReasonNone},
	}

	b := NewGame()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			legal, reason := b.IsMoveLegal(tt.from, tt.to, tt.color)
			assert.Equal(t, tt.legal, legal)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestPawnDoubleStepOnlyFromStartRank(t *testing.T) {
	b := NewGame()
	after, _, _ := b.ApplyMove(Square{5, 2}, Square{5, 3}, NoPieceType)

	legal, reason := after.IsMoveLegal(Square{5, 3}, Square{5, 5}, White)
	assert.False(t, legal)
	assert.Equal(t, ReasonPatternViolation, reason)
}

func TestPawnCapturesDiagonally(t *testing.T) {
	b := NewEmptyBoard()
	b.Place(Square{5, 1}, King, White)
	b.Place(Square{5, 8}, King, Black)
	b.Place(Square{4, 4}, Pawn, White)
	b.Place(Square{5, 5}, Pawn, Black)

	legal, _ := b.IsMoveLegal(Square{4, 4}, Square{5, 5}, White)
	assert.True(t, legal, "diagonal capture onto enemy pawn")

	legal, reason := b.IsMoveLegal(Square{4, 4}, Square{3, 5}, White)
	assert.False(t, legal, "diagonal step onto empty square")
	assert.Equal(t, ReasonPatternViolation, reason)

	legal, reason = b.IsMoveLegal(Square{4, 4}, Square{4, 5}, White)
	assert.True(t, legal, "forward push to empty square")
	assert.Equal(t, ReasonNone, reason)

	b.Place(Square{3, 5}, Knight, White)
	legal, reason = b.IsMoveLegal(Square{4, 4}, Square{3, 5}, White)
	assert.False(t, legal, "diagonal step onto own piece")
	assert.Equal(t, ReasonPatternViolation, reason)

	b.Place(Square{4, 5}, Bishop, White)
	legal, reason = b.IsMoveLegal(Square{4, 4}, Square{4, 5}, White)
	assert.False(t, legal, "push blocked by own piece")
	assert.Equal(t, ReasonPathBlocked, reason)
}

func TestPinnedPieceCannotExposeKing(t *testing.T) {
	b := NewEmptyBoard()
	b.Place(Square{5, 1}, King, White)
	b.Place(Square{5, 2}, Rook, White)
	b.Place(Square{5, 8}, Rook, Black)
	b.Place(Square{1, 8}, King, Black)

	legal, reason := b.IsMoveLegal(Square{5, 2}, Square{1, 2}, White)
	assert.False(t, legal)
	assert.Equal(t, ReasonSelfCheck, reason)

	legal, _ = b.IsMoveLegal(Square{5, 2}, Square{5, 4}, White)
	assert.True(t, legal, "sliding along the pin file keeps the king covered")
}

func TestScholarsMateEndsInCheckmate(t *testing.T) {
	b := NewGame()
	moves := []struct {
		from, to Square
		color    Color
	}{
		{Square{5, 2}, Square{5, 4}, White}, // e4
		{Square{5, 7}, Square{5, 5}, Black}, // e5
		{Square{4, 1}, Square{8, 5}, White}, // Qh5
		{Square{2, 8}, Square{3, 6}, Black}, // Nc6
		{Square{6, 1}, Square{3, 4}, White}, // Bc4
		{Square{7, 8}, Square{6, 6}, Black}, // Nf6
		{Square{8, 5}, Square{6, 7}, White}, // Qxf7#
	}

	for _, mv := range moves {
		legal, reason := b.IsMoveLegal(mv.from, mv.to, mv.color)
		require.True(t, legal, "%s -> %s refused: %s", mv.from, mv.to, reason)
		b, _, _ = b.ApplyMove(mv.from, mv.to, NoPieceType)
	}

	assert.True(t, b.IsCheck(Black))
	assert.True(t, b.IsCheckmate(Black))
	assert.False(t, b.IsStalemate(Black))
}

func TestStalemateDetection(t *testing.T) {
	b := NewEmptyBoard()
	b.Place(Square{1, 8}, King, Black)
	b.Place(Square{3, 7}, Queen, White)
	b.Place(Square{3, 6}, King, White)

	assert.False(t, b.IsCheck(Black))
	assert.True(t, b.IsStalemate(Black))
	assert.False(t, b.IsCheckmate(Black))
}

func TestCheckmateImpliesCheck(t *testing.T) {
	// Back-rank mate: rook on a8, king boxed in by its own pawns.
	b := NewEmptyBoard()
	b.Place(Square{7, 8}, King, Black)
	b.Place(Square{6, 7}, Pawn, Black)
	b.Place(Square{7, 7}, Pawn, Black)
	b.Place(Square{8, 7}, Pawn, Black)
	b.Place(Square{1, 8}, Rook, White)
	b.Place(Square{5, 1}, King, White)

	assert.True(t, b.IsCheck(Black))
	assert.True(t, b.IsCheckmate(Black))
}

func TestPromotionDefaultsToQueenAndKeepsID(t *testing.T) {
	b := NewEmptyBoard()
	b.Place(Square{5, 1}, King, White)
	b.Place(Square{5, 8}, King, Black)
	pawn := b.Place(Square{1, 7}, Pawn, White)

	after, moved, captured := b.ApplyMove(Square{1, 7}, Square{1, 8}, NoPieceType)
	assert.Nil(t, captured)
	assert.Equal(t, Queen, moved.Type)
	assert.Equal(t, pawn.ID, moved.ID)
	assert.Equal(t, White, moved.Color)

	p, ok := after.PieceAt(Square{1, 8})
	require.True(t, ok)
	assert.Equal(t, Queen, p.Type)
	assert.Equal(t, pawn.ID, p.ID)
}

func TestPromotionHonorsExplicitChoice(t *testing.T) {
	b := NewEmptyBoard()
	b.Place(Square{5, 1}, King, White)
	b.Place(Square{5, 8}, King, Black)
	b.Place(Square{8, 2}, Pawn, Black)

	after, moved, _ := b.ApplyMove(Square{8, 2}, Square{8, 1}, Knight)
	assert.Equal(t, Knight, moved.Type)

	p, ok := after.PieceAt(Square{8, 1})
	require.True(t, ok)
	assert.Equal(t, Knight, p.Type)
	assert.Equal(t, Black, p.Color)
}

func TestApplyMoveReportsCapture(t *testing.T) {
	b := NewEmptyBoard()
	b.Place(Square{5, 1}, King, White)
	b.Place(Square{5, 8}, King, Black)
	b.Place(Square{4, 4}, Rook, White)
	victim := b.Place(Square{4, 7}, Knight, Black)

	after, _, captured := b.ApplyMove(Square{4, 4}, Square{4, 7}, NoPieceType)
	require.NotNil(t, captured)
	assert.Equal(t, victim.ID, captured.ID)
	assert.Equal(t, Knight, captured.Type)

	p, ok := after.PieceAt(Square{4, 7})
	require.True(t, ok)
	assert.Equal(t, Rook, p.Type)
	assert.Equal(t, White, p.Color)
}

func TestLegalMovesCountFromStart(t *testing.T) {
	b := NewGame()
	// 16 pawn moves plus 4 knight moves per side in the opening position.
	assert.Len(t, b.LegalMoves(White), 20)
	assert.Len(t, b.LegalMoves(Black), 20)
}

func TestIsSquareAttacked(t *testing.T) {
	b := NewEmptyBoard()
	b.Place(Square{4, 4}, Pawn, White)
	b.Place(Square{1, 1}, Rook, Black)

	assert.True(t, b.IsSquareAttacked(Square{3, 5}, White), "white pawn attacks up-left")
	assert.True(t, b.IsSquareAttacked(Square{5, 5}, White), "white pawn attacks up-right")
	assert.False(t, b.IsSquareAttacked(Square{4, 5}, White), "pawns do not attack straight ahead")

	assert.True(t, b.IsSquareAttacked(Square{1, 8}, Black), "rook attacks along the open file")
	assert.False(t, b.IsSquareAttacked(Square{4, 5}, Black), "rook has no diagonal reach")
}
