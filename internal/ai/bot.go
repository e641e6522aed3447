// Package ai provides the house opponent: a one-ply greedy material
// evaluator driven entirely by the engine's legal-move enumeration.
package ai

import (
	"math/rand"

	"github.com/wizardchess/magic-chess-backend/internal/engine"
)

type Bot interface {
	// BestMove picks a move for color on b. The second return is false
	// when color has no legal move.
	BestMove(b *engine.Board, color engine.Color) (engine.Move, bool)
	Name() string
}

var materialValue = map[engine.PieceType]int{
	engine.Pawn:   100,
	engine.Knight: 320,
	engine.Bishop: 330,
	engine.Rook:   500,
	engine.Queen:  900,
	engine.King:   20000,
}

// Greedy scores each legal move by the material it wins right now and
// plays the best one, breaking ties at random so it doesn't shuffle the
// same piece back and forth forever.
type Greedy struct {
	rng *rand.Rand
}

func NewGreedy(seed int64) *Greedy {
	return &Greedy{rng: rand.New(rand.NewSource(seed))}
}

func (g *Greedy) Name() string { return "greedy" }

func (g *Greedy) BestMove(b *engine.Board, color engine.Color) (engine.Move, bool) {
	moves := b.LegalMoves(color)
	if len(moves) == 0 {
		return engine.Move{}, false
	}

	best := []engine.Move{}
	bestScore := -1
	for _, mv := range moves {
		score := g.score(b, mv, color)
		switch {
		case score > bestScore:
			bestScore = score
			best = best[:0]
			best = append(best, mv)
		case score == bestScore:
			best = append(best, mv)
		}
	}
	return best[g.rng.Intn(len(best))], true
}

func (g *Greedy) score(b *engine.Board, mv engine.Move, color engine.Color) int {
	score := 0
	if victim, ok := b.PieceAt(mv.To); ok {
		score += materialValue[victim.Type]
	}
	if mover, ok := b.PieceAt(mv.From); ok && mover.Type == engine.Pawn {
		promotionRank := 8
		if color == engine.Black {
			promotionRank = 1
		}
		if mv.To.Y == promotionRank {
			score += materialValue[engine.Queen] - materialValue[engine.Pawn]
		}
	}
	return score
}
