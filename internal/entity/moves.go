package entity

// offset - a (column, row) delta.
type offset struct {
	dCol int
	dRow int
}

var (
	bizOffsets = []offset{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}

	sauOffsets = []offset{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}

	torRays = []offset{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	xorRays = []offset{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
)

// GenerateMoves - computes the squares a piece may move to and caches them on the piece.
// The order is fixed per kind so highlighting and tests are reproducible.
func GenerateMoves(piece *Piece, board *Board) []Coordinate {
	var moves []Coordinate

	switch piece.Kind {
	case Biz:
		moves = jumps(piece, board, bizOffsets)
	case Sau:
		moves = jumps(piece, board, sauOffsets)
	case Ram:
		moves = ramStep(piece, board)
	case Tor:
		moves = slides(piece, board, torRays)
	case Xor:
		moves = slides(piece, board, xorRays)
	}

	piece.validMoves = moves

	return moves
}

// jumps - single-offset moves onto empty squares or opponent pieces.
func jumps(piece *Piece, board *Board, offsets []offset) []Coordinate {
	moves := make([]Coordinate, 0, len(offsets))

	for _, o := range offsets {
		target := Coordinate{Row: piece.Position.Row + o.dRow, Column: piece.Position.Column + o.dCol}
		if !target.InBounds() {
			continue
		}

		if occupant := board.At(target); occupant != nil && occupant.Team == piece.Team {
			continue
		}

		moves = append(moves, target)
	}

	return moves
}

// ramStep - one square along the Ram's direction, only onto an empty square.
func ramStep(piece *Piece, board *Board) []Coordinate {
	step := -1
	if piece.Ram != nil && piece.Ram.Direction == Forward {
		step = 1
	}

	target := Coordinate{Row: piece.Position.Row + step, Column: piece.Position.Column}
	if !target.InBounds() || board.At(target) != nil {
		return []Coordinate{}
	}

	return []Coordinate{target}
}

// slides - rays that stop on the first occupant, which is included when it is an opponent.
func slides(piece *Piece, board *Board, rays []offset) []Coordinate {
	moves := make([]Coordinate, 0, Rows+Columns)

	for _, ray := range rays {
		target := piece.Position
		for {
			target = Coordinate{Row: target.Row + ray.dRow, Column: target.Column + ray.dCol}
			if !target.InBounds() {
				break
			}

			occupant := board.At(target)
			if occupant == nil {
				moves = append(moves, target)
				continue
			}

			if occupant.Team != piece.Team {
				moves = append(moves, target)
			}
			break
		}
	}

	return moves
}
