package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
	"github.com/rocketscienceinc/kwazam-backend/internal/kwazam"
	"github.com/rocketscienceinc/kwazam-backend/internal/savegame"
)

func (that *Registry) registerGameCommands() {
	that.Register(&Command{
		Name:        "board",
		ShortName:   "b",
		Description: "Show the board",
		Usage:       "board",
		Handler:     that.board,
	})

	that.Register(&Command{
		Name:        "select",
		ShortName:   "s",
		Description: "Pick up a piece of the team to move",
		Usage:       "select <square>",
		MinArgs:     1,
		MaxArgs:     1,
		Handler:     that.selectPiece,
	})

	that.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Move the selected piece",
		Usage:       "move <square>",
		MinArgs:     1,
		MaxArgs:     1,
		Handler:     that.move,
	})

	that.Register(&Command{
		Name:        "moves",
		Description: "List the moves of the selected piece",
		Usage:       "moves",
		Handler:     that.moves,
	})

	that.Register(&Command{
		Name:        "history",
		ShortName:   "h",
		Description: "Show the moves played so far",
		Usage:       "history",
		Handler:     that.history,
	})

	that.Register(&Command{
		Name:        "clear",
		Description: "Forget the move history, the board stays",
		Usage:       "clear",
		Handler:     that.clear,
	})

	that.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Start over from the initial layout",
		Usage:       "new",
		Handler:     that.newGame,
	})
}

func (that *Registry) registerFileCommands() {
	that.Register(&Command{
		Name:        "save",
		Description: "Write the game to a save file",
		Usage:       "save [path]",
		MaxArgs:     1,
		Handler:     that.save,
	})

	that.Register(&Command{
		Name:        "load",
		Description: "Replace the game with a save file",
		Usage:       "load [path]",
		MaxArgs:     1,
		Handler:     that.load,
	})
}

func (that *Registry) board([]string) error {
	renderBoard(that.out, that.game, that.painter)
	renderStatus(that.out, that.game, that.painter)

	return nil
}

func (that *Registry) selectPiece(args []string) error {
	square, err := entity.ParseNotation(args[0])
	if err != nil {
		return err
	}

	moves, err := kwazam.Select(that.game, that.game.Turn, square)
	if err != nil {
		return err
	}

	selected := that.game.Board.Selected()
	if len(moves) == 0 {
		fmt.Fprintf(that.out, "%s %s on %s has no moves\n", selected.Team, selected.Kind, square)
		return nil
	}

	fmt.Fprintf(that.out, "%s %s on %s can move to %s\n",
		that.painter.team(selected.Team), selected.Kind, square, joinSquares(moves))

	return nil
}

func (that *Registry) move(args []string) error {
	square, err := entity.ParseNotation(args[0])
	if err != nil {
		return err
	}

	mover := that.game.Turn
	applied, err := kwazam.PlayMove(that.game, square.Index())
	if err != nil {
		return err
	}

	fmt.Fprintf(that.out, "%s %s -> %s", that.painter.team(mover), applied.From, applied.To)
	if applied.Captured {
		fmt.Fprintf(that.out, " takes %s", applied.CapturedKind)
	}
	fmt.Fprintln(that.out)

	if applied.Transformed {
		fmt.Fprintln(that.out, that.painter.paint(yellow, "Tor and Xor swap places"))
	}

	return that.board(nil)
}

func (that *Registry) moves([]string) error {
	selected := that.game.Board.Selected()
	if selected == nil {
		fmt.Fprintln(that.out, "No piece selected")
		return nil
	}

	moves := selected.ValidMoves()
	if len(moves) == 0 {
		fmt.Fprintf(that.out, "%s has no moves\n", selected.Position)
		return nil
	}

	fmt.Fprintln(that.out, joinSquares(moves))

	return nil
}

func (that *Registry) history([]string) error {
	if len(that.game.MoveHistory) == 0 {
		fmt.Fprintln(that.out, "No moves yet")
		return nil
	}

	for i, square := range that.game.MoveHistory {
		fmt.Fprintf(that.out, "%3d. %s\n", i+1, square)
	}

	return nil
}

func (that *Registry) clear([]string) error {
	that.game.ClearMoveHistory()
	fmt.Fprintln(that.out, "Move history cleared")

	return nil
}

func (that *Registry) newGame([]string) error {
	that.game = newLocalGame()
	that.logger.Debug("new game", "game_id", that.game.ID)

	return that.board(nil)
}

func (that *Registry) save(args []string) error {
	path := that.savePath(args)

	if err := savegame.SaveFile(path, that.game); err != nil {
		return fmt.Errorf("could not save game: %w", err)
	}

	that.logger.Debug("game saved", "path", path, "moves", len(that.game.MoveHistory))
	fmt.Fprintf(that.out, "Saved to %s\n", path)

	return nil
}

func (that *Registry) load(args []string) error {
	path := that.savePath(args)

	game, err := savegame.LoadFile(path)
	if err != nil {
		return fmt.Errorf("could not load game: %w", err)
	}

	game.ID = that.game.ID
	that.game = game
	that.logger.Debug("game loaded", "path", path, "status", game.Status)
	fmt.Fprintf(that.out, "Loaded %s\n", path)

	return that.board(nil)
}

// savePath - relative paths live under the save directory.
func (that *Registry) savePath(args []string) string {
	if len(args) == 0 {
		return filepath.Join(that.saveDir, savegame.DefaultFileName)
	}

	if filepath.IsAbs(args[0]) {
		return args[0]
	}

	return filepath.Join(that.saveDir, args[0])
}

func joinSquares(squares []entity.Coordinate) string {
	names := make([]string, 0, len(squares))
	for _, square := range squares {
		names = append(names, square.String())
	}

	return strings.Join(names, " ")
}
