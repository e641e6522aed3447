package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedIsSymmetric(t *testing.T) {
	assert.InDelta(t, 0.5, Expected(1200, 1200), 1e-9)
	assert.InDelta(t, 1.0, Expected(1200, 400)+Expected(400, 1200), 1e-9)
}

func TestUpdateEqualRatings(t *testing.T) {
	w, l := Update(1200, 1200, false)
	assert.Equal(t, 1216, w)
	assert.Equal(t, 1184, l)
}

func TestUpdateIsZeroSum(t *testing.T) {
	for _, pair := range [][2]int{{1200, 1200}, {1500, 1100}, {900, 2000}} {
		w, l := Update(pair[0], pair[1], false)
		assert.Equal(t, pair[0]+pair[1], w+l)
	}
}

func TestUpdateDraw(t *testing.T) {
	w, l := Update(1200, 1200, true)
	assert.Equal(t, 1200, w)
	assert.Equal(t, 1200, l)

	// The lower-rated side gains on a draw.
	w, l = Update(1500, 1100, true)
	assert.Less(t, w, 1500)
	assert.Greater(t, l, 1100)
}

func TestUpsetMovesMoreThanExpectedWin(t *testing.T) {
	_, favoredLoss := Update(1100, 1500, false)
	favoredWin, _ := Update(1500, 1100, false)
	assert.Less(t, favoredWin-1500, 1500-favoredLoss)
}
