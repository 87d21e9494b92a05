package entity

import (
	"fmt"

	"github.com/rocketscienceinc/kwazam-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

// RoundsPerTransformation - full Blue+Red rounds between two Tor/Xor swaps.
const RoundsPerTransformation = 2

type Game struct {
	ID          string    `json:"id"`
	Board       *Board    `json:"-"`
	Turn        Team      `json:"turn"`
	Round       int       `json:"round"`
	MoveHistory []string  `json:"move_history"`
	Winner      Team      `json:"winner,omitempty"`
	Status      string    `json:"status"`
	Players     []*Player `json:"players,omitempty"`
}

func NewGame(id string) *Game {
	game := &Game{ID: id, Status: StatusWaiting}
	game.Restart()

	return game
}

// Restart - puts the pieces back in their starting layout. Players and status are kept.
func (that *Game) Restart() {
	that.Board = NewBoard()
	that.Turn = TeamBlue
	that.Round = 0
	that.MoveHistory = []string{}
	that.Winner = TeamNone
	if that.Status == StatusFinished {
		that.Status = StatusOngoing
	}
}

func (that *Game) CurrentTeam() Team {
	return that.Turn
}

func (that *Game) CurrentValidMoves() []Coordinate {
	return that.Board.CurrentValidMoves()
}

func (that *Game) ClearMoveHistory() {
	that.MoveHistory = []string{}
}

// DetermineWinner - a team wins once the opposing Sau is gone. TeamNone while both are alive.
func (that *Game) DetermineWinner() (Team, error) {
	blueAlive := that.Board.CountKind(Sau, TeamBlue) > 0
	redAlive := that.Board.CountKind(Sau, TeamRed) > 0

	switch {
	case blueAlive && redAlive:
		return TeamNone, nil
	case blueAlive:
		return TeamBlue, nil
	case redAlive:
		return TeamRed, nil
	default:
		return TeamNone, fmt.Errorf("%w: no Sau left on the board", apperror.ErrInvariantViolation)
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: unknown game status %q", apperror.ErrInvariantViolation, that.Status)
	}
}

// PlayerByID - the seat of a player in this game.
func (that *Game) PlayerByID(id string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID == id {
			return player, true
		}
	}
	return nil, false
}

// Clone - a deep copy that is safe to hand to another goroutine.
func (that *Game) Clone() *Game {
	cloned := *that
	cloned.Board = that.Board.Clone()
	cloned.MoveHistory = append([]string{}, that.MoveHistory...)
	cloned.Players = make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		copied := *player
		cloned.Players = append(cloned.Players, &copied)
	}

	return &cloned
}
