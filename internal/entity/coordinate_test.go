package entity

import (
	"testing"

	"github.com/rocketscienceinc/kwazam-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinate_IndexRoundTrip(t *testing.T) {
	for i := range Squares {
		// When: converting an index to a coordinate and back
		coordinate, err := FromIndex(i)
		require.NoError(t, err)

		// Then: the same index comes back
		assert.Equal(t, i, ToIndex(coordinate.Row, coordinate.Column))
		assert.Equal(t, i, coordinate.Index())
	}
}

func TestFromIndex(t *testing.T) {
	t.Run("Splits index into row and column", func(t *testing.T) {
		coordinate, err := FromIndex(37)

		require.NoError(t, err)
		assert.Equal(t, Coordinate{Row: 7, Column: 2}, coordinate)
	})

	t.Run("Rejects indices outside the board", func(t *testing.T) {
		for _, index := range []int{-1, Squares, 100} {
			_, err := FromIndex(index)

			assert.ErrorIs(t, err, apperror.ErrOutOfBounds)
		}
	})
}

func TestNotation(t *testing.T) {
	tests := []struct {
		index    int
		expected string
	}{
		{0, "A8"},
		{4, "E8"},
		{5, "A7"},
		{32, "C2"},
		{35, "A1"},
		{39, "E1"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			// When: converting the index to notation
			notation := Notation(tt.index)

			// Then: column letter and rank match
			assert.Equal(t, tt.expected, notation)

			// And: parsing the notation gives the index back
			coordinate, err := ParseNotation(notation)
			require.NoError(t, err)
			assert.Equal(t, tt.index, coordinate.Index())
		})
	}
}

func TestParseNotation(t *testing.T) {
	t.Run("Accepts lower case", func(t *testing.T) {
		coordinate, err := ParseNotation(" c2 ")

		require.NoError(t, err)
		assert.Equal(t, Coordinate{Row: 6, Column: 2}, coordinate)
	})

	t.Run("Rejects squares off the board", func(t *testing.T) {
		for _, square := range []string{"F1", "A9", "A0", "", "B", "B10", "?3"} {
			_, err := ParseNotation(square)

			assert.ErrorIs(t, err, apperror.ErrOutOfBounds, square)
		}
	})
}
