package engine

// The transformation lattice. Rook is the ceiling of the upgrade chain and
// Pawn the floor of the downgrade chain; Queen and King are untouchable by
// either action.
var (
	upgradePaths = map[PieceType][]PieceType{
		Pawn:   {Knight, Bishop, Rook},
		Knight: {Bishop, Rook},
		Bishop: {Rook},
	}
	downgradePaths = map[PieceType][]PieceType{
		Rook:   {Bishop, Knight},
		Bishop: {Knight, Pawn},
		Knight: {Pawn},
	}
)

func untouchable(pt PieceType) bool {
	return pt == Queen || pt == King
}

// AllowedUpgradeTypes lists the types pt may be upgraded to, empty if none.
func AllowedUpgradeTypes(pt PieceType) []PieceType {
	return append([]PieceType{}, upgradePaths[pt]...)
}

// AllowedDowngradeTypes lists the types pt may be downgraded to, empty if none.
func AllowedDowngradeTypes(pt PieceType) []PieceType {
	return append([]PieceType{}, downgradePaths[pt]...)
}

func allowedTransform(action MagicAction, from, to PieceType) bool {
	if untouchable(from) || untouchable(to) {
		return false
	}
	paths := upgradePaths
	if action == ActionDowngrade {
		paths = downgradePaths
	}
	for _, pt := range paths[from] {
		if pt == to {
			return true
		}
	}
	return false
}

// ValidUpgradeTargets lists the squares of color's own pieces that have at
// least one upgrade available.
func (b *Board) ValidUpgradeTargets(color Color) []Square {
	return b.magicTargets(color, upgradePaths)
}

// ValidDowngradeTargets lists the squares of the opponent's pieces that
// have at least one downgrade available. Downgrade always targets the
// opponent, relative to the acting color.
func (b *Board) ValidDowngradeTargets(color Color) []Square {
	return b.magicTargets(color.Opposite(), downgradePaths)
}

func (b *Board) magicTargets(owner Color, paths map[PieceType][]PieceType) []Square {
	targets := []Square{}
	for y := 1; y <= 8; y++ {
		for x := 1; x <= 8; x++ {
			sq := Square{X: x, Y: y}
			p := b.pieceAt(sq)
			if p == nil || p.Color != owner || untouchable(p.Type) {
				continue
			}
			if len(paths[p.Type]) > 0 {
				targets = append(targets, sq)
			}
		}
	}
	return targets
}

// ApplyMagicMove validates and applies a one-shot transformation of the
// piece on target to newType. lastMove and prevBoard describe the
// immediately preceding ply and the board before it; both may be nil when
// no such ply exists. The validator is stateless: per-color single-use
// gating belongs to the caller.
//
// A transformation may never itself deliver checkmate. A downgrade of the
// piece that just moved is additionally run through the soft time-reversal
// rule: if the weaker type could not legally have made that last move, the
// piece is sent back to the move's origin square, so no piece ever stands
// on ground unreachable by its historical movement capabilities.
func (b *Board) ApplyMagicMove(action MagicAction, target Square, newType PieceType, acting Color, lastMove *MoveRecord, prevBoard *Board) (bool, Reason, *Board) {
	if !target.Valid() {
		return false, ReasonInvalidSquare, nil
	}
	piece := b.pieceAt(target)
	if piece == nil {
		return false, ReasonNoPieceAtTarget, nil
	}

	switch action {
	case ActionUpgrade:
		if piece.Color != acting {
			return false, ReasonWrongOwnership, nil
		}
	case ActionDowngrade:
		if piece.Color == acting {
			return false, ReasonWrongOwnership, nil
		}
	}

	if !allowedTransform(action, piece.Type, newType) {
		return false, ReasonDisallowedTransformation, nil
	}

	candidate := b.Clone()
	transformed := candidate.pieceAt(target)
	transformed.Type = newType

	if candidate.IsCheckmate(acting.Opposite()) {
		return false, ReasonImmediateCheckmateForbidden, nil
	}

	if action == ActionDowngrade && lastMove != nil && prevBoard != nil &&
		piece.ID == lastMove.PieceID && target == lastMove.To {
		if !couldHaveMoved(prevBoard, lastMove, newType) {
			// The move just played is retroactively illegal for the weaker
			// type: undo the ground it gained, keep the transformation.
			candidate.setPiece(target, nil)
			candidate.setPiece(lastMove.From, transformed)
		}
	}

	return true, ReasonNone, candidate
}

// couldHaveMoved rebuilds the pre-move board with the mover already
// downgraded at its origin and asks whether the identical move would still
// have been legal.
func couldHaveMoved(prevBoard *Board, lastMove *MoveRecord, newType PieceType) bool {
	hyp := prevBoard.Clone()
	at, mover := hyp.findPieceByID(lastMove.PieceID)
	if mover == nil || at != lastMove.From {
		// The previous board does not match the move record; nothing to
		// reverse against, so let the transformation stand as moved.
		return true
	}
	mover.Type = newType
	ok, _ := hyp.IsMoveLegal(lastMove.From, lastMove.To, mover.Color)
	return ok
}
