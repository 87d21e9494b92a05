package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/kwazam-backend/internal/apperror"
	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
	"github.com/rocketscienceinc/kwazam-backend/internal/savegame"
)

var ErrGameNotFound = apperror.ErrGameNotFound

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// storedGame - the redis value of a game. The board travels as a save record; the selection
// cursor is not part of a save record and is kept next to it.
type storedGame struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Winner    entity.Team      `json:"winner,omitempty"`
	Players   []*entity.Player `json:"players,omitempty"`
	Record    string           `json:"record"`
	Selected  string           `json:"selected,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func gameKey(id string) string {
	return "game:" + id
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	now := time.Now().UTC()

	var record bytes.Buffer
	if err := savegame.Encode(&record, game, now); err != nil {
		return fmt.Errorf("could not encode game: %w", err)
	}

	stored := storedGame{
		ID:        game.ID,
		Status:    game.Status,
		Winner:    game.Winner,
		Players:   game.Players,
		Record:    record.String(),
		UpdatedAt: now,
	}
	if selected := game.Board.Selected(); selected != nil {
		stored.Selected = selected.Position.String()
	}

	gameJSON, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	err = that.client.Set(ctx, gameKey(game.ID), gameJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Game{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.Game{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	var stored storedGame
	if err = json.Unmarshal([]byte(response), &stored); err != nil {
		return &entity.Game{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	existingGame, err := savegame.Decode(strings.NewReader(stored.Record))
	if err != nil {
		return &entity.Game{}, fmt.Errorf("stored game %s: %w", id, err)
	}

	existingGame.ID = stored.ID
	existingGame.Status = stored.Status
	existingGame.Winner = stored.Winner
	existingGame.Players = stored.Players

	if stored.Selected != "" {
		selected, err := entity.ParseNotation(stored.Selected)
		if err != nil {
			return &entity.Game{}, fmt.Errorf("stored game %s selection: %w", id, err)
		}
		existingGame.Board.Select(&selected)
	}

	return existingGame, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	if deleted == 0 {
		return ErrGameNotFound
	}

	return nil
}
