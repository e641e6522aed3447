package engine

type offset struct{ dx, dy int }

var (
	rookDirs   = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightDirs = []offset{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingDirs   = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func (sq Square) shift(o offset) Square {
	return Square{X: sq.X + o.dx, Y: sq.Y + o.dy}
}

// pawnDir is the forward row delta for c; pawnStartRank the double-step rank.
func pawnDir(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

func pawnStartRank(c Color) int {
	if c == White {
		return 2
	}
	return 7
}

func promotionRank(c Color) int {
	if c == White {
		return 8
	}
	return 1
}

// IsMoveLegal decides whether color may move the piece on from to to.
// On refusal the Reason says why. Legality is the piece's movement pattern
// plus line-of-sight plus the self-check exclusion; there is no castling
// and no en passant in this variant.
func (b *Board) IsMoveLegal(from, to Square, color Color) (bool, Reason) {
	if !from.Valid() || !to.Valid() {
		return false, ReasonInvalidSquare
	}
	piece := b.pieceAt(from)
	if piece == nil {
		return false, ReasonInvalidSquare
	}
	if piece.Color != color {
		return false, ReasonWrongColor
	}
	if ok, reason := b.isPseudoLegal(piece, from, to); !ok {
		return false, reason
	}

	// Hypothetically apply the move and make sure our own king is safe.
	after, _, _ := b.ApplyMove(from, to, NoPieceType)
	if after.IsCheck(color) {
		return false, ReasonSelfCheck
	}
	return true, ReasonNone
}

// isPseudoLegal checks the movement pattern and path only, ignoring check.
func (b *Board) isPseudoLegal(piece *Piece, from, to Square) (bool, Reason) {
	if from == to {
		return false, ReasonPatternViolation
	}
	// A friendly piece on the destination refuses the move: obstruction for
	// the sliders, a pattern matter for knight and king. Pawns are handled
	// below, where a blocked push and a bad capture differ.
	if dest := b.pieceAt(to); dest != nil && dest.Color == piece.Color && piece.Type != Pawn {
		switch piece.Type {
		case Rook, Bishop, Queen:
			return false, ReasonPathBlocked
		default:
			return false, ReasonPatternViolation
		}
	}

	dx := to.X - from.X
	dy := to.Y - from.Y

	switch piece.Type {
	case Pawn:
		return b.isPawnMove(piece, from, to, dx, dy)
	case Knight:
		if (abs(dx) == 1 && abs(dy) == 2) || (abs(dx) == 2 && abs(dy) == 1) {
			return true, ReasonNone
		}
		return false, ReasonPatternViolation
	case Bishop:
		if abs(dx) != abs(dy) {
			return false, ReasonPatternViolation
		}
		return b.isPathClear(from, to)
	case Rook:
		if dx != 0 && dy != 0 {
			return false, ReasonPatternViolation
		}
		return b.isPathClear(from, to)
	case Queen:
		if dx != 0 && dy != 0 && abs(dx) != abs(dy) {
			return false, ReasonPatternViolation
		}
		return b.isPathClear(from, to)
	case King:
		if abs(dx) <= 1 && abs(dy) <= 1 {
			return true, ReasonNone
		}
		return false, ReasonPatternViolation
	default:
		return false, ReasonPatternViolation
	}
}

func (b *Board) isPawnMove(piece *Piece, from, to Square, dx, dy int) (bool, Reason) {
	dir := pawnDir(piece.Color)
	dest := b.pieceAt(to)

	// Straight pushes land only on empty squares.
	if dx == 0 {
		if dest != nil {
			return false, ReasonPathBlocked
		}
		if dy == dir {
			return true, ReasonNone
		}
		if dy == 2*dir && from.Y == pawnStartRank(piece.Color) {
			if b.pieceAt(Square{X: from.X, Y: from.Y + dir}) != nil {
				return false, ReasonPathBlocked
			}
			return true, ReasonNone
		}
		return false, ReasonPatternViolation
	}

	// Diagonal steps are captures only, and only of enemy pieces.
	if abs(dx) == 1 && dy == dir {
		if dest == nil || dest.Color == piece.Color {
			return false, ReasonPatternViolation
		}
		return true, ReasonNone
	}
	return false, ReasonPatternViolation
}

// isPathClear walks the straight or diagonal line between from and to,
// exclusive of both endpoints.
func (b *Board) isPathClear(from, to Square) (bool, Reason) {
	step := offset{dx: sign(to.X - from.X), dy: sign(to.Y - from.Y)}
	for sq := from.shift(step); sq != to; sq = sq.shift(step) {
		if b.pieceAt(sq) != nil {
			return false, ReasonPathBlocked
		}
	}
	return true, ReasonNone
}

// IsSquareAttacked reports whether any piece of byColor could capture on
// sq. It scans outward from sq, mirroring the piece patterns; the pawn case
// re-derives the diagonal-capture asymmetry from the general pawn rule.
func (b *Board) IsSquareAttacked(sq Square, byColor Color) bool {
	for _, dir := range rookDirs {
		for probe := sq.shift(dir); probe.Valid(); probe = probe.shift(dir) {
			p := b.pieceAt(probe)
			if p == nil {
				continue
			}
			if p.Color == byColor && (p.Type == Rook || p.Type == Queen) {
				return true
			}
			break
		}
	}
	for _, dir := range bishopDirs {
		for probe := sq.shift(dir); probe.Valid(); probe = probe.shift(dir) {
			p := b.pieceAt(probe)
			if p == nil {
				continue
			}
			if p.Color == byColor && (p.Type == Bishop || p.Type == Queen) {
				return true
			}
			break
		}
	}
	for _, dir := range knightDirs {
		if p := b.pieceAt(sq.shift(dir)); p != nil && p.Color == byColor && p.Type == Knight {
			return true
		}
	}
	for _, dir := range kingDirs {
		if p := b.pieceAt(sq.shift(dir)); p != nil && p.Color == byColor && p.Type == King {
			return true
		}
	}
	// A pawn of byColor attacks sq from one row behind it (relative to the
	// pawn's own direction of travel).
	pawnRow := -pawnDir(byColor)
	for _, dx := range []int{-1, 1} {
		probe := Square{X: sq.X + dx, Y: sq.Y + pawnRow}
		if p := b.pieceAt(probe); p != nil && p.Color == byColor && p.Type == Pawn {
			return true
		}
	}
	return false
}

// IsCheck reports whether color's king is attacked. A board with no king
// for color is never in check; sandbox positions rely on that.
func (b *Board) IsCheck(color Color) bool {
	kingSq, ok := b.FindKing(color)
	if !ok {
		return false
	}
	return b.IsSquareAttacked(kingSq, color.Opposite())
}

// IsCheckmate is check with no legal reply.
func (b *Board) IsCheckmate(color Color) bool {
	return b.IsCheck(color) && !b.hasLegalMove(color)
}

// IsStalemate is no legal reply without check.
func (b *Board) IsStalemate(color Color) bool {
	return !b.IsCheck(color) && !b.hasLegalMove(color)
}

// hasLegalMove scans every origin/destination pair for color. O(64x64)
// legality checks, which is fine for turn-based play.
func (b *Board) hasLegalMove(color Color) bool {
	for y := 1; y <= 8; y++ {
		for x := 1; x <= 8; x++ {
			from := Square{X: x, Y: y}
			p := b.pieceAt(from)
			if p == nil || p.Color != color {
				continue
			}
			for ty := 1; ty <= 8; ty++ {
				for tx := 1; tx <= 8; tx++ {
					if ok, _ := b.IsMoveLegal(from, Square{X: tx, Y: ty}, color); ok {
						return true
					}
				}
			}
		}
	}
	return false
}

// LegalMoves enumerates every legal move for color.
func (b *Board) LegalMoves(color Color) []Move {
	moves := []Move{}
	for y := 1; y <= 8; y++ {
		for x := 1; x <= 8; x++ {
			from := Square{X: x, Y: y}
			p := b.pieceAt(from)
			if p == nil || p.Color != color {
				continue
			}
			for ty := 1; ty <= 8; ty++ {
				for tx := 1; tx <= 8; tx++ {
					to := Square{X: tx, Y: ty}
					if ok, _ := b.IsMoveLegal(from, to, color); ok {
						moves = append(moves, Move{From: from, To: to})
					}
				}
			}
		}
	}
	return moves
}

// ApplyMove computes the board after moving from->to, trusting the caller
// to have checked legality first. It returns the new snapshot, the moved
// piece (after any promotion) and the captured piece, if any. A pawn
// reaching the far back rank promotes to promotion, defaulting to Queen,
// keeping its id and color.
func (b *Board) ApplyMove(from, to Square, promotion PieceType) (*Board, Piece, *Piece) {
	nb := b.Clone()
	moving := nb.pieceAt(from)

	var captured *Piece
	if dest := nb.pieceAt(to); dest != nil {
		cp := *dest
		captured = &cp
	}

	nb.setPiece(from, nil)
	nb.setPiece(to, moving)

	if moving.Type == Pawn && to.Y == promotionRank(moving.Color) {
		if promotion == NoPieceType {
			promotion = Queen
		}
		moving.Type = promotion
	}
	return nb, *moving, captured
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
