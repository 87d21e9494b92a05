package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
)

// Terminal color codes
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
)

type painter struct {
	enabled bool
}

func (that painter) paint(color, text string) string {
	if !that.enabled {
		return text
	}
	return color + text + reset
}

func (that painter) team(team entity.Team) string {
	switch team {
	case entity.TeamBlue:
		return that.paint(blue, string(team))
	case entity.TeamRed:
		return that.paint(red, string(team))
	default:
		return string(team)
	}
}

// Prompt - the readline prompt for the team to move.
func Prompt(game *entity.Game, colored bool) string {
	p := painter{enabled: colored}
	if game.IsFinished() {
		return p.paint(yellow, "kwazam") + " [" + p.team(game.Winner) + " won] > "
	}
	return p.paint(yellow, "kwazam") + " [" + p.team(game.Turn) + "] > "
}

// renderBoard - board.String() with Blue pieces in blue, Red pieces in red and
// the squares of the selection's moves marked with '*'.
func renderBoard(w io.Writer, game *entity.Game, p painter) {
	targets := make(map[string]bool)
	for _, move := range game.CurrentValidMoves() {
		targets[move.String()] = true
	}

	lines := strings.Split(game.Board.String(), "\n")
	last := len(lines) - 1

	for i, line := range lines {
		if i == 0 || i == last {
			fmt.Fprintln(w, p.paint(cyan, line))
			continue
		}
		fmt.Fprintln(w, renderRank(line, entity.Rows-i+1, targets, p))
	}
}

// renderRank - one "<rank>  Xx ..  <rank>" line of the ASCII board.
func renderRank(line string, rank int, targets map[string]bool, p painter) string {
	var sb strings.Builder

	fields := strings.Fields(line)
	sb.WriteString(p.paint(cyan, fields[0]) + " ")

	for column, cell := range fields[1 : len(fields)-1] {
		square := string(rune('A'+column)) + fmt.Sprint(rank)

		switch {
		case targets[square] && cell == ".":
			sb.WriteString(" " + p.paint(green, "* "))
		case targets[square]:
			sb.WriteString(" " + p.paint(green, cell))
		case cell == ".":
			sb.WriteString(" . ")
		case cell == strings.ToUpper(cell):
			sb.WriteString(" " + p.paint(blue, cell))
		default:
			sb.WriteString(" " + p.paint(red, cell))
		}
	}

	sb.WriteString(" " + p.paint(cyan, fields[len(fields)-1]))

	return sb.String()
}

func renderStatus(w io.Writer, game *entity.Game, p painter) {
	if game.IsFinished() {
		fmt.Fprintf(w, "Game over: %s wins after %d moves\n", p.team(game.Winner), len(game.MoveHistory))
		return
	}

	fmt.Fprintf(w, "Turn: %s  Round: %d/%d  Pieces: %d\n",
		p.team(game.Turn), game.Round, entity.RoundsPerTransformation, game.Board.PieceCount())

	if selected := game.Board.Selected(); selected != nil {
		fmt.Fprintf(w, "Selected: %s %s\n", selected.Position, selected.Kind)
	}
}
