package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/kwazam-backend/internal/apperror"
)

const (
	Rows    = 8
	Columns = 5
	Squares = Rows * Columns
)

// Coordinate - a square on the board. Row 0 is rank 8, the Red home rank.
type Coordinate struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// FromIndex - converts a linear board index into a coordinate.
func FromIndex(index int) (Coordinate, error) {
	if index < 0 || index >= Squares {
		return Coordinate{}, fmt.Errorf("%w: index %d", apperror.ErrOutOfBounds, index)
	}

	return Coordinate{Row: index / Columns, Column: index % Columns}, nil
}

// ToIndex - converts a row and column pair into a linear board index.
func ToIndex(row, column int) int {
	return row*Columns + column
}

// Notation - converts a linear board index into "<column letter><rank>", e.g. 0 -> A8.
func Notation(index int) string {
	column := index % Columns
	row := index / Columns

	return string(rune('A'+column)) + strconv.Itoa(Rows-row)
}

// ParseNotation - inverse of Notation, case-insensitive.
func ParseNotation(square string) (Coordinate, error) {
	square = strings.ToUpper(strings.TrimSpace(square))
	if len(square) != 2 {
		return Coordinate{}, fmt.Errorf("%w: square %q", apperror.ErrOutOfBounds, square)
	}

	column := int(square[0] - 'A')
	rank := int(square[1] - '0')
	row := Rows - rank

	if !InBounds(row, column) {
		return Coordinate{}, fmt.Errorf("%w: square %q", apperror.ErrOutOfBounds, square)
	}

	return Coordinate{Row: row, Column: column}, nil
}

func InBounds(row, column int) bool {
	return row >= 0 && row < Rows && column >= 0 && column < Columns
}

func (that Coordinate) InBounds() bool {
	return InBounds(that.Row, that.Column)
}

func (that Coordinate) Index() int {
	return ToIndex(that.Row, that.Column)
}

func (that Coordinate) String() string {
	return Notation(that.Index())
}
