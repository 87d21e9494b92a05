package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/kwazam-backend/internal/apperror"
)

const InitialPieceCount = 20

// AppliedMove - the outcome of a single move.
type AppliedMove struct {
	From         Coordinate `json:"from"`
	To           Coordinate `json:"to"`
	Captured     bool       `json:"captured"`
	CapturedKind PieceKind  `json:"captured_kind,omitempty"`
	Transformed  bool       `json:"transformed"`
}

// Board - the 8x5 grid. The selection cursor is transient and never persisted.
type Board struct {
	grid       [Rows][Columns]*Piece
	pieceCount int
	selected   *Coordinate
}

// homeRank - where a team's pieces start, as linear indices.
type homeRank struct {
	team     Team
	firstRam int
	tor      int
	xor      int
}

var homeRanks = []homeRank{
	{team: TeamBlue, firstRam: 30, tor: 39, xor: 35},
	{team: TeamRed, firstRam: 5, tor: 0, xor: 4},
}

// NewEmptyBoard - a board without pieces, used when loading saved games.
func NewEmptyBoard() *Board {
	return &Board{pieceCount: InitialPieceCount}
}

// NewBoard - a board with the starting layout of both teams.
func NewBoard() *Board {
	board := NewEmptyBoard()
	for _, home := range homeRanks {
		board.setUp(home)
	}

	return board
}

func (that *Board) setUp(home homeRank) {
	first := min(home.tor, home.xor)

	layout := []struct {
		kind  PieceKind
		index int
	}{
		{Tor, home.tor},
		{Xor, home.xor},
		{Sau, first + 2},
		{Biz, first + 1},
		{Biz, first + 3},
	}
	for i := home.firstRam; i < home.firstRam+Columns; i++ {
		layout = append(layout, struct {
			kind  PieceKind
			index int
		}{Ram, i})
	}

	for _, slot := range layout {
		coordinate, _ := FromIndex(slot.index)
		that.Place(CreatePiece(slot.kind, coordinate, home.team, false))
	}
}

// CreatePiece - piece factory. initiallyFlipped only affects how a Sau is drawn.
func CreatePiece(kind PieceKind, coordinate Coordinate, team Team, initiallyFlipped bool) *Piece {
	piece := &Piece{
		Kind:     kind,
		Team:     team,
		Position: coordinate,
		IconPath: IconPath(kind, team, false),
	}

	switch kind {
	case Sau:
		if initiallyFlipped {
			piece.IconPath = IconPath(kind, team, true)
		}
	case Ram:
		piece.Ram = &RamExtra{
			Direction:       Backward,
			FlipIconPath:    IconPath(kind, team, true),
			InitialIconPath: IconPath(kind, team, false),
		}
		if team == TeamRed {
			piece.Ram.Direction = Forward
		}
		piece.Ram.reorient(coordinate.Row)
	case Biz, Tor, Xor:
	}

	return piece
}

// Place - puts a piece on its own position, replacing whatever was there.
func (that *Board) Place(piece *Piece) {
	that.grid[piece.Position.Row][piece.Position.Column] = piece
}

// At - the piece on a square, or nil for empty and off-board squares.
func (that *Board) At(coordinate Coordinate) *Piece {
	if !coordinate.InBounds() {
		return nil
	}
	return that.grid[coordinate.Row][coordinate.Column]
}

// Pieces - every piece in row-major order.
func (that *Board) Pieces() []*Piece {
	pieces := make([]*Piece, 0, InitialPieceCount)
	for row := range Rows {
		for column := range Columns {
			if piece := that.grid[row][column]; piece != nil {
				pieces = append(pieces, piece)
			}
		}
	}

	return pieces
}

func (that *Board) CountKind(kind PieceKind, team Team) int {
	count := 0
	for _, piece := range that.Pieces() {
		if piece.Kind == kind && piece.Team == team {
			count++
		}
	}

	return count
}

func (that *Board) PieceCount() int {
	return that.pieceCount
}

func (that *Board) SetPieceCount(count int) {
	that.pieceCount = count
}

// Select - moves the selection cursor and regenerates the moves of the piece under it.
// A nil coordinate clears the selection.
func (that *Board) Select(coordinate *Coordinate) *Piece {
	if coordinate == nil {
		that.selected = nil
		return nil
	}

	selected := *coordinate
	that.selected = &selected

	piece := that.At(selected)
	if piece != nil {
		GenerateMoves(piece, that)
	}

	return piece
}

// Selected - the piece under the selection cursor, if any.
func (that *Board) Selected() *Piece {
	if that.selected == nil {
		return nil
	}
	return that.At(*that.selected)
}

// CurrentValidMoves - the moves of the selected piece.
func (that *Board) CurrentValidMoves() []Coordinate {
	piece := that.Selected()
	if piece == nil {
		return []Coordinate{}
	}
	return piece.ValidMoves()
}

// ApplyMove - moves the selected piece to destinationIndex. The destination has to be one of
// the moves generated on selection; on error the board is left untouched.
func (that *Board) ApplyMove(destinationIndex int) (AppliedMove, error) {
	destination, err := FromIndex(destinationIndex)
	if err != nil {
		return AppliedMove{}, err
	}

	piece := that.Selected()
	if piece == nil {
		return AppliedMove{}, fmt.Errorf("%w: no piece selected", apperror.ErrIllegalMove)
	}

	if !piece.CanMoveTo(destination) {
		return AppliedMove{}, fmt.Errorf("%w: %s %s cannot reach %s",
			apperror.ErrIllegalMove, piece.Team, piece.Kind, destination)
	}

	applied := AppliedMove{From: piece.Position, To: destination}
	if occupant := that.At(destination); occupant != nil {
		applied.Captured = true
		applied.CapturedKind = occupant.Kind
		that.pieceCount--
	}

	that.grid[applied.From.Row][applied.From.Column] = nil
	piece.moveTo(destination)
	that.Place(piece)
	that.selected = nil

	return applied, nil
}

// SwapTorXor - turns every Tor into a Xor and every Xor into a Tor in one sweep.
func (that *Board) SwapTorXor() {
	for _, piece := range that.Pieces() {
		var kind PieceKind

		switch piece.Kind {
		case Tor:
			kind = Xor
		case Xor:
			kind = Tor
		case Biz, Ram, Sau:
			continue
		}

		swapped := CreatePiece(kind, piece.Position, piece.Team, false)
		swapped.validMoves = append([]Coordinate(nil), piece.validMoves...)
		that.Place(swapped)
	}
}

// Orient - points the Sau and Ram icons toward the team to move.
func (that *Board) Orient(team Team) {
	rotated := team == TeamRed

	for _, piece := range that.Pieces() {
		switch piece.Kind {
		case Sau:
			piece.IconPath = IconPath(Sau, piece.Team, rotated)
		case Ram:
			if rotated {
				piece.IconPath = piece.Ram.FlipIconPath
			} else {
				piece.IconPath = piece.Ram.InitialIconPath
			}
		case Biz, Tor, Xor:
		}
	}
}

// Clone - a deep copy, selection included.
func (that *Board) Clone() *Board {
	cloned := &Board{pieceCount: that.pieceCount}
	if that.selected != nil {
		selected := *that.selected
		cloned.selected = &selected
	}

	for _, piece := range that.Pieces() {
		cloned.Place(piece.clone())
	}

	return cloned
}

// String - ASCII board with rank 8 on top. Blue pieces are upper case, Red lower case.
func (that *Board) String() string {
	var sb strings.Builder

	sb.WriteString("   A  B  C  D  E\n")
	for row := range Rows {
		fmt.Fprintf(&sb, "%d ", Rows-row)
		for column := range Columns {
			piece := that.grid[row][column]
			if piece == nil {
				sb.WriteString(" . ")
				continue
			}

			symbol := string(piece.Kind[:2])
			if piece.Team == TeamBlue {
				symbol = strings.ToUpper(symbol)
			} else {
				symbol = strings.ToLower(symbol)
			}
			fmt.Fprintf(&sb, " %s", symbol)
		}
		fmt.Fprintf(&sb, " %d\n", Rows-row)
	}
	sb.WriteString("   A  B  C  D  E")

	return sb.String()
}
