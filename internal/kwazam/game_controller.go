package kwazam

import (
	"fmt"

	"github.com/rocketscienceinc/kwazam-backend/internal/apperror"
	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
)

// Select - puts the selection cursor on one of the active team's pieces and returns its moves.
func Select(gameInstance *entity.Game, team entity.Team, square entity.Coordinate) ([]entity.Coordinate, error) {
	if gameInstance.IsFinished() {
		return nil, apperror.ErrGameFinished
	}

	if err := validateSelection(gameInstance, team, square); err != nil {
		return nil, fmt.Errorf("invalid selection: %w", err)
	}

	piece := gameInstance.Board.Select(&square)

	return piece.ValidMoves(), nil
}

// PlayMove - applies the selected piece's move to destinationIndex and advances the turn.
// Either the whole turn is applied or the game is left untouched.
func PlayMove(gameInstance *entity.Game, destinationIndex int) (entity.AppliedMove, error) {
	if gameInstance.IsFinished() {
		return entity.AppliedMove{}, apperror.ErrGameFinished
	}

	if selected := gameInstance.Board.Selected(); selected != nil && selected.Team != gameInstance.Turn {
		return entity.AppliedMove{}, fmt.Errorf("invalid move: %w", apperror.ErrNotYourTurn)
	}

	if err := previewOutcome(gameInstance, destinationIndex); err != nil {
		return entity.AppliedMove{}, fmt.Errorf("invalid move: %w", err)
	}

	applied, err := gameInstance.Board.ApplyMove(destinationIndex)
	if err != nil {
		return entity.AppliedMove{}, fmt.Errorf("invalid move: %w", err)
	}

	gameInstance.MoveHistory = append(gameInstance.MoveHistory, entity.Notation(destinationIndex))
	applied.Transformed = advanceTurn(gameInstance)
	gameInstance.Board.Orient(gameInstance.Turn)

	if err = updateGameStatus(gameInstance); err != nil {
		return applied, err
	}

	return applied, nil
}

// previewOutcome - plays the move on a copy of the board and runs the win check there,
// so a failing check rejects the move before the game is touched.
func previewOutcome(gameInstance *entity.Game, destinationIndex int) error {
	preview := &entity.Game{Board: gameInstance.Board.Clone()}

	if _, err := preview.Board.ApplyMove(destinationIndex); err != nil {
		return err
	}

	_, err := preview.DetermineWinner()

	return err
}

// validateSelection - checks that the square holds a piece of the team to move.
func validateSelection(gameInstance *entity.Game, team entity.Team, square entity.Coordinate) error {
	if !square.InBounds() {
		return fmt.Errorf("%w: row %d column %d", apperror.ErrOutOfBounds, square.Row, square.Column)
	}

	if gameInstance.Turn != team {
		return apperror.ErrNotYourTurn
	}

	piece := gameInstance.Board.At(square)
	if piece == nil {
		return fmt.Errorf("%w: %s is empty", apperror.ErrIllegalMove, square)
	}

	if piece.Team != team {
		return fmt.Errorf("%w: %s holds a %s piece", apperror.ErrNotYourTurn, square, piece.Team)
	}

	return nil
}

// advanceTurn - hands the turn over; a finished Red move closes a round.
// Reports whether the Tor/Xor transformation fired.
func advanceTurn(gameInstance *entity.Game) bool {
	if gameInstance.Turn == entity.TeamRed {
		gameInstance.Round++
	}
	gameInstance.Turn = gameInstance.Turn.Opponent()

	if gameInstance.Round < entity.RoundsPerTransformation {
		return false
	}

	gameInstance.Round = 0
	gameInstance.Board.SwapTorXor()

	return true
}

// updateGameStatus - checks the win condition after a move.
func updateGameStatus(gameInstance *entity.Game) error {
	winner, err := gameInstance.DetermineWinner()
	if err != nil {
		return err
	}

	if winner != entity.TeamNone {
		gameInstance.Winner = winner
		gameInstance.Status = entity.StatusFinished
	}

	return nil
}
