// Package savegame reads and writes the line-oriented save record of a game.
//
// Layout:
//
//	---METADATA---
//	Timestamp: <RFC3339>
//	---STATE---
//	BlueState | RedState
//	---BOARD---
//	<row>,<col>,<kind>,<team>[,<flip icon>,<initial icon>,<+|->,<icon>]
//	---PIECE COUNT---
//	Piece Count: <n>
//	---MOVES---
//	<notation>
//	---ROUND---
//	<n>
package savegame

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/kwazam-backend/internal/apperror"
	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
)

const (
	headerMetadata   = "---METADATA---"
	headerState      = "---STATE---"
	headerBoard      = "---BOARD---"
	headerPieceCount = "---PIECE COUNT---"
	headerMoves      = "---MOVES---"
	headerRound      = "---ROUND---"

	stateBlue = "BlueState"
	stateRed  = "RedState"

	pieceCountPrefix = "Piece Count:"
	timestampPrefix  = "Timestamp: "

	ramFields   = 8
	pieceFields = 4
)

type section int

const (
	sectionNone section = iota
	sectionMetadata
	sectionState
	sectionBoard
	sectionPieceCount
	sectionMoves
	sectionRound
)

var headers = map[string]section{
	headerMetadata:   sectionMetadata,
	headerState:      sectionState,
	headerBoard:      sectionBoard,
	headerPieceCount: sectionPieceCount,
	headerMoves:      sectionMoves,
	headerRound:      sectionRound,
}

// Encode - writes the save record of a game.
func Encode(w io.Writer, game *entity.Game, timestamp time.Time) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, headerMetadata)
	fmt.Fprintln(bw, timestampPrefix+timestamp.Format(time.RFC3339))

	fmt.Fprintln(bw, headerState)
	fmt.Fprintln(bw, stateTag(game.Turn))

	fmt.Fprintln(bw, headerBoard)
	for _, piece := range game.Board.Pieces() {
		fmt.Fprintln(bw, encodePiece(piece))
	}

	fmt.Fprintln(bw, headerPieceCount)
	fmt.Fprintf(bw, "%s %d\n", pieceCountPrefix, game.Board.PieceCount())

	fmt.Fprintln(bw, headerMoves)
	for _, move := range game.MoveHistory {
		fmt.Fprintln(bw, move)
	}

	fmt.Fprintln(bw, headerRound)
	fmt.Fprint(bw, strconv.Itoa(game.Round))

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrIO, err)
	}

	return nil
}

func stateTag(team entity.Team) string {
	if team == entity.TeamRed {
		return stateRed
	}
	return stateBlue
}

func encodePiece(piece *entity.Piece) string {
	fields := []string{
		strconv.Itoa(piece.Position.Row),
		strconv.Itoa(piece.Position.Column),
		string(piece.Kind),
		string(piece.Team),
	}

	if piece.Ram != nil {
		fields = append(fields,
			piece.Ram.FlipIconPath,
			piece.Ram.InitialIconPath,
			string(piece.Ram.Direction),
			piece.IconPath,
		)
	}

	return strings.Join(fields, ",")
}

// decoder - accumulates a game while the record is read; nothing is shared with a live game.
type decoder struct {
	game     *entity.Game
	section  section
	line     int
	hasState bool
	pieces   [][]string
}

// Decode - parses a save record into a new game. Errors wrap apperror.ErrLoadParse or
// apperror.ErrIO.
func Decode(r io.Reader) (*entity.Game, error) {
	dec := &decoder{
		game: &entity.Game{
			Board:       entity.NewEmptyBoard(),
			Turn:        entity.TeamBlue,
			MoveHistory: []string{},
			Status:      entity.StatusOngoing,
		},
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		dec.line++
		if err := dec.consume(strings.TrimRight(scanner.Text(), "\r")); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", apperror.ErrLoadParse, dec.line, err)
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line %d: %w", apperror.ErrLoadParse, dec.line+1, err)
		}
		return nil, fmt.Errorf("%w: %w", apperror.ErrIO, err)
	}

	if !dec.hasState {
		return nil, fmt.Errorf("%w: missing %s section", apperror.ErrLoadParse, headerState)
	}

	// Pieces are built after the whole record is read: a Sau is drawn for the side to move.
	for i, fields := range dec.pieces {
		if err := dec.placePiece(fields); err != nil {
			return nil, fmt.Errorf("%w: board entry %d: %w", apperror.ErrLoadParse, i+1, err)
		}
	}

	if err := dec.settle(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrLoadParse, err)
	}

	return dec.game, nil
}

// settle - derives the status of the loaded game from its board.
func (that *decoder) settle() error {
	winner, err := that.game.DetermineWinner()
	if err != nil {
		return err
	}

	if winner != entity.TeamNone {
		that.game.Winner = winner
		that.game.Status = entity.StatusFinished
	}

	return nil
}

var (
	errUnknownSection = errors.New("unknown section")
	errUnknownState   = errors.New("unknown state")
	errOutsideSection = errors.New("data outside of any section")
	errFieldCount     = errors.New("wrong number of fields")
	errSquareTaken    = errors.New("square listed twice")
	errRoundRange     = errors.New("round out of range")
	errCountRange     = errors.New("piece count out of range")
	errRamFields      = errors.New("only a Ram carries extra fields")
)

func (that *decoder) consume(line string) error {
	if strings.HasPrefix(line, "---") && strings.HasSuffix(line, "---") {
		next, ok := headers[line]
		if !ok {
			return fmt.Errorf("%w: %q", errUnknownSection, line)
		}
		that.section = next

		return nil
	}

	switch that.section {
	case sectionMetadata:
		return nil
	case sectionState:
		return that.readState(line)
	case sectionBoard:
		return that.readBoardLine(line)
	case sectionPieceCount:
		return that.readPieceCount(line)
	case sectionMoves:
		return that.readMove(line)
	case sectionRound:
		return that.readRound(line)
	case sectionNone:
		if line == "" {
			return nil
		}
		return errOutsideSection
	}

	return nil
}

func (that *decoder) readState(line string) error {
	switch line {
	case stateBlue:
		that.game.Turn = entity.TeamBlue
	case stateRed:
		that.game.Turn = entity.TeamRed
	default:
		return fmt.Errorf("%w: %q", errUnknownState, line)
	}
	that.hasState = true

	return nil
}

func (that *decoder) readBoardLine(line string) error {
	if line == "" {
		return nil
	}

	fields := strings.Split(line, ",")
	if len(fields) != pieceFields && len(fields) != ramFields {
		return fmt.Errorf("%w: %q", errFieldCount, line)
	}
	that.pieces = append(that.pieces, fields)

	return nil
}

func (that *decoder) placePiece(fields []string) error {
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("row: %w", err)
	}

	column, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("column: %w", err)
	}

	if !entity.InBounds(row, column) {
		return fmt.Errorf("%w: row %d column %d", apperror.ErrOutOfBounds, row, column)
	}

	kind, err := entity.ParsePieceKind(fields[2])
	if err != nil {
		return err
	}

	if len(fields) == ramFields && kind != entity.Ram {
		return fmt.Errorf("%w: %s", errRamFields, kind)
	}

	team, err := entity.ParseTeam(fields[3])
	if err != nil {
		return err
	}

	coordinate := entity.Coordinate{Row: row, Column: column}
	if that.game.Board.At(coordinate) != nil {
		return fmt.Errorf("%w: %s", errSquareTaken, coordinate)
	}

	piece := entity.CreatePiece(kind, coordinate, team, that.game.Turn == entity.TeamRed)

	if kind == entity.Ram && len(fields) == ramFields {
		direction, err := entity.ParseDirection(fields[6])
		if err != nil {
			return err
		}

		piece.Ram.FlipIconPath = fields[4]
		piece.Ram.InitialIconPath = fields[5]
		piece.Ram.Direction = direction
		piece.IconPath = fields[7]
	}

	that.game.Board.Place(piece)

	return nil
}

func (that *decoder) readPieceCount(line string) error {
	if line == "" {
		return nil
	}

	value, ok := strings.CutPrefix(line, pieceCountPrefix)
	if !ok {
		return fmt.Errorf("piece count: unexpected line %q", line)
	}

	count, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("piece count: %w", err)
	}

	if count < 0 || count > entity.InitialPieceCount {
		return fmt.Errorf("%w: %d", errCountRange, count)
	}
	that.game.Board.SetPieceCount(count)

	return nil
}

func (that *decoder) readMove(line string) error {
	if line == "" {
		return nil
	}

	square, err := entity.ParseNotation(line)
	if err != nil {
		return fmt.Errorf("move: %w", err)
	}
	that.game.MoveHistory = append(that.game.MoveHistory, square.String())

	return nil
}

func (that *decoder) readRound(line string) error {
	if line == "" {
		return nil
	}

	round, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return fmt.Errorf("round: %w", err)
	}

	if round < 0 || round >= entity.RoundsPerTransformation {
		return fmt.Errorf("%w: %d", errRoundRange, round)
	}
	that.game.Round = round

	return nil
}
