package apperror

import "errors"

var (
	ErrOutOfBounds        = errors.New("coordinate is out of bounds")
	ErrIllegalMove        = errors.New("illegal move")
	ErrLoadParse          = errors.New("malformed save record")
	ErrIO                 = errors.New("save file i/o failure")
	ErrInvariantViolation = errors.New("game invariant violated")

	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrGameIsFull       = errors.New("game already has two players")
	ErrGameNotFound     = errors.New("game not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotInGame        = errors.New("player is not in this game")
)
