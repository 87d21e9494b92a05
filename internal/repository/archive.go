package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
)

// ArchivedGame - a finished game kept after it leaves the live store.
type ArchivedGame struct {
	GameID       string      `json:"game_id"`
	Winner       entity.Team `json:"winner"`
	BluePlayerID string      `json:"blue_player_id,omitempty"`
	RedPlayerID  string      `json:"red_player_id,omitempty"`
	MoveCount    int         `json:"move_count"`
	Record       string      `json:"-"`
	FinishedAt   time.Time   `json:"finished_at"`
}

type ArchiveRepository interface {
	Save(ctx context.Context, game *ArchivedGame) error
	List(ctx context.Context, limit int) ([]*ArchivedGame, error)
}

type archiveRepository struct {
	conn *sql.DB
}

func NewArchiveRepository(conn *sql.DB) ArchiveRepository {
	return &archiveRepository{
		conn: conn,
	}
}

// NewArchivedGame - the archive row of a finished game; record is its final save record.
func NewArchivedGame(game *entity.Game, record string, finishedAt time.Time) *ArchivedGame {
	archived := &ArchivedGame{
		GameID:     game.ID,
		Winner:     game.Winner,
		MoveCount:  len(game.MoveHistory),
		Record:     record,
		FinishedAt: finishedAt.UTC(),
	}

	for _, player := range game.Players {
		switch player.Team {
		case entity.TeamBlue:
			archived.BluePlayerID = player.ID
		case entity.TeamRed:
			archived.RedPlayerID = player.ID
		case entity.TeamNone:
		}
	}

	return archived
}

func (that *archiveRepository) Save(ctx context.Context, game *ArchivedGame) error {
	query := `INSERT INTO games_archive (game_id, winner, blue_player_id, red_player_id, move_count, record, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			winner = excluded.winner,
			blue_player_id = excluded.blue_player_id,
			red_player_id = excluded.red_player_id,
			move_count = excluded.move_count,
			record = excluded.record,
			finished_at = excluded.finished_at`

	_, err := that.conn.ExecContext(ctx, query,
		game.GameID, string(game.Winner), game.BluePlayerID, game.RedPlayerID,
		game.MoveCount, game.Record, game.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("can't archive game: %w", err)
	}

	return nil
}

// List - most recently finished games first.
func (that *archiveRepository) List(ctx context.Context, limit int) ([]*ArchivedGame, error) {
	query := `SELECT game_id, winner, blue_player_id, red_player_id, move_count, record, finished_at
		FROM games_archive ORDER BY finished_at DESC, game_id LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list archived games: %w", err)
	}
	defer rows.Close()

	games := []*ArchivedGame{}
	for rows.Next() {
		var (
			game   ArchivedGame
			winner string
		)

		if err = rows.Scan(&game.GameID, &winner, &game.BluePlayerID, &game.RedPlayerID,
			&game.MoveCount, &game.Record, &game.FinishedAt); err != nil {
			return nil, fmt.Errorf("can't scan archived game: %w", err)
		}
		game.Winner = entity.Team(winner)

		games = append(games, &game)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't list archived games: %w", err)
	}

	return games, nil
}
