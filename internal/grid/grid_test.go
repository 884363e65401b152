package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepWrapsAtEdges(t *testing.T) {
	cases := []struct {
		name string
		pos  Position
		dir  Direction
		w, h int
		want Position
	}{
		{"up wraps top edge", Position{X: 3, Y: 0}, Up, 10, 10, Position{X: 3, Y: 9}},
		{"down wraps bottom edge", Position{X: 3, Y: 9}, Down, 10, 10, Position{X: 3, Y: 0}},
		{"left wraps left edge", Position{X: 0, Y: 5}, Left, 10, 10, Position{X: 9, Y: 5}},
		{"right wraps right edge", Position{X: 9, Y: 5}, Right, 10, 10, Position{X: 0, Y: 5}},
		{"interior step has no wrap", Position{X: 4, Y: 4}, Right, 10, 10, Position{X: 5, Y: 4}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Step(tc.pos, tc.dir, tc.w, tc.h)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOppositeIsInvolution(t *testing.T) {
	for _, d := range All {
		assert.Equal(t, d, d.Opposite().Opposite(), "opposite should be its own inverse")
		assert.NotEqual(t, d, d.Opposite())
	}
}

func TestParseDirectionRoundTrips(t *testing.T) {
	for _, d := range All {
		parsed, ok := ParseDirection(d.String())
		require.True(t, ok)
		assert.Equal(t, d, parsed)
	}
}

func TestParseDirectionRejectsUnknown(t *testing.T) {
	_, ok := ParseDirection("Sideways")
	assert.False(t, ok)
}
