package equipment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromCountsClampsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		regular  float64
		expected int
	}{
		{name: "positive integer", regular: 3, expected: 3},
		{name: "fraction truncates", regular: 2.9, expected: 2},
		{name: "negative clamps", regular: -4, expected: 0},
		{name: "NaN clamps", regular: math.NaN(), expected: 0},
		{name: "+Inf clamps", regular: math.Inf(1), expected: 0},
		{name: "-Inf clamps", regular: math.Inf(-1), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := FromCounts(tt.regular, 0, 0, 0, 0)
			assert.Equal(t, tt.expected, snap.Regular)
		})
	}
}

func TestNormalizeClampsNegatives(t *testing.T) {
	snap := Snapshot{Regular: -1, Smart: 2, Other: -3, Scanners: -1, Printers: 4}.Normalize()
	assert.Equal(t, Snapshot{Smart: 2, Printers: 4}, snap)
}

func TestKktWorkUnitsUsesWeights(t *testing.T) {
	snap := Snapshot{Regular: 2, Smart: 1, Other: 1}

	assert.Equal(t, 4, snap.KktTotal())
	assert.Equal(t, 6, snap.KktWorkUnits(Weights{}), "zero weights fall back to defaults")
	assert.Equal(t, 4, snap.KktWorkUnits(Weights{Regular: 1, Smart: 1, Other: 1}))
	assert.Equal(t, 2, snap.KktWorkUnits(Weights{Regular: 1, Smart: -5, Other: 0}))
}

func TestRestrictZeroesRejectedKinds(t *testing.T) {
	snap := Snapshot{Regular: 1, Smart: 1, Other: 1, Scanners: 2, Printers: 3}

	assert.Equal(t, snap, snap.Restrict(AllKinds))
	assert.Equal(t, Snapshot{Scanners: 2, Printers: 3}, snap.Restrict(Kinds{Scanners: true, Printers: true}))
	assert.True(t, snap.Restrict(Kinds{}).IsZero())
}

func TestHugeCountsSaturate(t *testing.T) {
	huge := Snapshot{Regular: math.MaxInt, Smart: math.MaxInt, Other: math.MaxInt, Scanners: math.MaxInt}

	assert.Equal(t, math.MaxInt32, huge.Normalize().Regular)
	assert.Equal(t, math.MaxInt32, huge.Normalize().Scanners)
	assert.Equal(t, math.MaxInt32, huge.KktTotal())
	assert.Equal(t, math.MaxInt32, huge.KktWorkUnits(Weights{}))
	assert.Equal(t, math.MaxInt32, huge.KktWorkUnits(Weights{Regular: math.MaxInt, Smart: math.MaxInt, Other: math.MaxInt}))
	assert.Equal(t, math.MaxInt32, Snapshot{Smart: math.MaxInt32}.KktWorkUnits(Weights{}))
}

func TestKktTotalIgnoresNegativeCounts(t *testing.T) {
	snap := Snapshot{Regular: 3, Smart: -2, Other: -1}

	assert.Equal(t, 3, snap.KktTotal())
	assert.Equal(t, 3, snap.KktWorkUnits(Weights{}))
}
