// Package rating implements standard Elo arithmetic for rated matches.
package rating

import "math"

const (
	// Default is the rating assigned to a player never seen before.
	Default = 1200
	// KFactor controls how fast ratings move.
	KFactor = 32
)

// Expected is the probability that a player rated a beats one rated b.
func Expected(a, b int) float64 {
	return 1 / (1 + math.Pow(10, float64(b-a)/400))
}

// Update returns the new ratings after a game between winner and loser.
// For a draw, pass draw=true; the argument order then has no effect on the
// total. The same delta is added and subtracted, so the pool is zero-sum.
func Update(winner, loser int, draw bool) (int, int) {
	score := 1.0
	if draw {
		score = 0.5
	}
	delta := int(math.Round(KFactor * (score - Expected(winner, loser))))
	return winner + delta, loser - delta
}
