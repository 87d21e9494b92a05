package entity

import (
	"errors"
	"fmt"
)

type Team string

const (
	TeamBlue Team = "Blue"
	TeamRed  Team = "Red"
	TeamNone Team = ""
)

type PieceKind string

const (
	Biz PieceKind = "Biz"
	Ram PieceKind = "Ram"
	Sau PieceKind = "Sau"
	Tor PieceKind = "Tor"
	Xor PieceKind = "Xor"
)

// Direction - the way a Ram steps. Its string form is the operator stored in save files.
type Direction string

const (
	Forward  Direction = "+"
	Backward Direction = "-"
)

var (
	ErrUnknownTeam      = errors.New("unknown team")
	ErrUnknownPieceKind = errors.New("unknown piece kind")
	ErrUnknownDirection = errors.New("unknown direction")
)

func ParseTeam(value string) (Team, error) {
	switch team := Team(value); team {
	case TeamBlue, TeamRed:
		return team, nil
	default:
		return TeamNone, fmt.Errorf("%w: %q", ErrUnknownTeam, value)
	}
}

func (that Team) Opponent() Team {
	if that == TeamBlue {
		return TeamRed
	}
	return TeamBlue
}

func ParsePieceKind(value string) (PieceKind, error) {
	switch kind := PieceKind(value); kind {
	case Biz, Ram, Sau, Tor, Xor:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPieceKind, value)
	}
}

func ParseDirection(value string) (Direction, error) {
	switch direction := Direction(value); direction {
	case Forward, Backward:
		return direction, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, value)
	}
}

// RamExtra - the state only a Ram carries. The icon references are display data.
type RamExtra struct {
	Direction       Direction `json:"direction"`
	FlipIconPath    string    `json:"flip_icon_path"`
	InitialIconPath string    `json:"initial_icon_path"`
}

type Piece struct {
	Kind     PieceKind  `json:"kind"`
	Team     Team       `json:"team"`
	Position Coordinate `json:"position"`
	IconPath string     `json:"icon_path"`
	Ram      *RamExtra  `json:"ram,omitempty"`

	validMoves []Coordinate
}

// IconPath - the asset a renderer shows for a piece, rotated or not.
func IconPath(kind PieceKind, team Team, rotated bool) string {
	if rotated {
		return fmt.Sprintf("src/%s_%s_Rotated.png", team, kind)
	}
	return fmt.Sprintf("src/%s_%s.png", team, kind)
}

// ValidMoves - the move list computed by the last GenerateMoves call.
func (that *Piece) ValidMoves() []Coordinate {
	return that.validMoves
}

func (that *Piece) CanMoveTo(target Coordinate) bool {
	for _, move := range that.validMoves {
		if move == target {
			return true
		}
	}
	return false
}

// moveTo - updates the position; a Ram turns around on the first and the last row.
func (that *Piece) moveTo(target Coordinate) {
	that.Position = target
	if that.Ram != nil {
		that.Ram.reorient(target.Row)
	}
}

func (that *RamExtra) reorient(row int) {
	if row != 0 && row != Rows-1 {
		return
	}

	if row == 0 {
		that.Direction = Forward
	} else {
		that.Direction = Backward
	}

	that.FlipIconPath, that.InitialIconPath = that.InitialIconPath, that.FlipIconPath
}

func (that *Piece) clone() *Piece {
	copied := *that
	if that.Ram != nil {
		ram := *that.Ram
		copied.Ram = &ram
	}
	copied.validMoves = append([]Coordinate(nil), that.validMoves...)

	return &copied
}
