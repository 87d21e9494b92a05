package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS games_archive (
	game_id TEXT PRIMARY KEY,
	winner TEXT NOT NULL CHECK(winner IN ('Blue', 'Red')),
	blue_player_id TEXT NOT NULL DEFAULT '',
	red_player_id TEXT NOT NULL DEFAULT '',
	move_count INTEGER NOT NULL,
	record TEXT NOT NULL,
	finished_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_games_archive_finished_at ON games_archive(finished_at);
`

type Storage struct {
	Connection *sql.DB
}

func New(path string) (*Storage, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	// SQLite accepts one writer at a time.
	conn.SetMaxOpenConns(1)

	return &Storage{Connection: conn}, nil
}

func (that *Storage) Init(ctx context.Context) error {
	if _, err := that.Connection.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("can't enable WAL mode: %w", err)
	}

	if _, err := that.Connection.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	return nil
}

func (that *Storage) Close() error {
	return that.Connection.Close()
}
