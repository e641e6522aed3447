package engine

// Board is an 8x8 grid of pieces. Boards are value-like: every operation
// that changes state clones first and returns a fresh snapshot, so a board
// held by a caller is never mutated behind its back.
type Board struct {
	grid [8][8]*Piece // [y-1][x-1]
}

// NewEmptyBoard returns a board with no pieces. Sandbox boards without
// kings are tolerated by the check logic (no king means "not in check").
func NewEmptyBoard() *Board {
	return &Board{}
}

// NewGame sets up the standard starting position. Piece ids are fresh per
// invocation; they only need to be unique within one game's lifetime.
func NewGame() *Board {
	b := &Board{}
	nextID := 0
	place := func(x, y int, pt PieceType, c Color) {
		nextID++
		b.grid[y-1][x-1] = &Piece{ID: nextID, Type: pt, Color: c}
	}

	backRank := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for x := 1; x <= 8; x++ {
		place(x, 1, backRank[x-1], White)
		place(x, 2, Pawn, White)
		place(x, 7, Pawn, Black)
		place(x, 8, backRank[x-1], Black)
	}
	return b
}

// Clone returns a deep copy sharing no piece values with the receiver.
func (b *Board) Clone() *Board {
	nb := &Board{}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if p := b.grid[y][x]; p != nil {
				cp := *p
				nb.grid[y][x] = &cp
			}
		}
	}
	return nb
}

// PieceAt reports the piece on sq, by value. The second return is false
// for empty or out-of-range squares.
func (b *Board) PieceAt(sq Square) (Piece, bool) {
	p := b.pieceAt(sq)
	if p == nil {
		return Piece{}, false
	}
	return *p, true
}

func (b *Board) pieceAt(sq Square) *Piece {
	if !sq.Valid() {
		return nil
	}
	return b.grid[sq.Y-1][sq.X-1]
}

func (b *Board) setPiece(sq Square, p *Piece) {
	b.grid[sq.Y-1][sq.X-1] = p
}

// Place puts a new piece on the board in place, assigning it an id unique
// on this board. It exists for building sandbox positions and must only be
// used on boards not yet shared with other holders.
func (b *Board) Place(sq Square, pt PieceType, c Color) Piece {
	maxID := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if p := b.grid[y][x]; p != nil && p.ID > maxID {
				maxID = p.ID
			}
		}
	}
	p := &Piece{ID: maxID + 1, Type: pt, Color: c}
	b.setPiece(sq, p)
	return *p
}

// FindKing locates c's king. Sandbox boards may have none.
func (b *Board) FindKing(c Color) (Square, bool) {
	for y := 1; y <= 8; y++ {
		for x := 1; x <= 8; x++ {
			sq := Square{X: x, Y: y}
			if p := b.pieceAt(sq); p != nil && p.Type == King && p.Color == c {
				return sq, true
			}
		}
	}
	return Square{}, false
}

// findPieceByID locates a piece by identity rather than position.
func (b *Board) findPieceByID(id int) (Square, *Piece) {
	for y := 1; y <= 8; y++ {
		for x := 1; x <= 8; x++ {
			sq := Square{X: x, Y: y}
			if p := b.pieceAt(sq); p != nil && p.ID == id {
				return sq, p
			}
		}
	}
	return Square{}, nil
}

// Count returns the number of pieces of color c on the board.
func (b *Board) Count(c Color) int {
	n := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if p := b.grid[y][x]; p != nil && p.Color == c {
				n++
			}
		}
	}
	return n
}
