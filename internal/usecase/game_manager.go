package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/kwazam-backend/internal/apperror"
	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
	"github.com/rocketscienceinc/kwazam-backend/internal/kwazam"
	"github.com/rocketscienceinc/kwazam-backend/internal/repository"
	"github.com/rocketscienceinc/kwazam-backend/internal/savegame"
	"github.com/rocketscienceinc/kwazam-backend/pkg/idgen"
)

const (
	maxPlayers          = 2
	defaultArchiveLimit = 50
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
}

type archiveRepo interface {
	Save(ctx context.Context, game *repository.ArchivedGame) error
	List(ctx context.Context, limit int) ([]*repository.ArchivedGame, error)
}

// Publisher - receives a snapshot after every change of a game. move is set only when the
// change was a move.
type Publisher interface {
	Publish(gameID string, view entity.GameView, move *entity.AppliedMove)
}

type GameManager struct {
	logger      *slog.Logger
	playerRepo  playerRepo
	gameRepo    gameRepo
	archiveRepo archiveRepo
	publisher   Publisher

	mu    sync.Mutex
	locks map[string]*gameLock
}

// gameLock - a per-game mutex that lives while somebody holds or waits for it.
type gameLock struct {
	sync.Mutex
	refs int
}

func NewGameManager(
	logger *slog.Logger,
	playerRepo playerRepo,
	gameRepo gameRepo,
	archiveRepo archiveRepo,
	publisher Publisher,
) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo:  playerRepo,
		gameRepo:    gameRepo,
		archiveRepo: archiveRepo,
		publisher:   publisher,

		locks: make(map[string]*gameLock),
	}
}

// lockGame - serialises load, mutate and store of one game.
func (that *GameManager) lockGame(gameID string) func() {
	that.mu.Lock()
	lock, ok := that.locks[gameID]
	if !ok {
		lock = &gameLock{}
		that.locks[gameID] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		that.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(that.locks, gameID)
		}
		that.mu.Unlock()
	}
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player, err := that.createPlayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create new player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// CreateGame - opens a new game with the player on the Blue side. A player who is still seated in
// an unfinished game gets that game back.
func (that *GameManager) CreateGame(ctx context.Context, playerID string) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame")

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID != "" {
		existingGame, err := that.gameRepo.GetByID(ctx, player.GameID)
		switch {
		case err == nil && !existingGame.IsFinished():
			return existingGame, nil
		case err != nil && !errors.Is(err, apperror.ErrGameNotFound):
			return nil, fmt.Errorf("failed to get current game: %w", err)
		}
	}

	newGame := entity.NewGame(idgen.NewGameID())

	player.GameID = newGame.ID
	player.Team = entity.TeamBlue
	newGame.Players = []*entity.Player{player}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, newGame); err != nil {
		return nil, err
	}

	log.Info("game created", "game_id", newGame.ID, "player_id", player.ID)

	return newGame, nil
}

// JoinGame - seats the player on the Red side and starts the game.
func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	unlock := that.lockGame(gameID)
	defer unlock()

	existingGame, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if _, seated := existingGame.PlayerByID(player.ID); seated {
		return existingGame, nil
	}

	if len(existingGame.Players) >= maxPlayers {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, gameID)
	}

	player.GameID = existingGame.ID
	player.Team = entity.TeamRed
	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	existingGame.Players = append(existingGame.Players, player)
	if existingGame.IsWaiting() {
		existingGame.Status = entity.StatusOngoing
	}

	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, err
	}

	that.logger.Info("player joined", "method", "JoinGame", "game_id", gameID, "player_id", playerID)
	that.publish(existingGame, nil)

	return existingGame, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	return that.getGameByID(ctx, gameID)
}

// SelectPiece - puts the player's selection on square and returns the game with its valid moves.
func (that *GameManager) SelectPiece(ctx context.Context, gameID, playerID, square string) (*entity.Game, error) {
	unlock := that.lockGame(gameID)
	defer unlock()

	existingGame, seat, err := that.seatedGame(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	if err = existingGame.ConfirmOngoingState(); err != nil {
		return nil, err
	}

	coordinate, err := entity.ParseNotation(square)
	if err != nil {
		return nil, err
	}

	if _, err = kwazam.Select(existingGame, seat.Team, coordinate); err != nil {
		return nil, fmt.Errorf("failed select piece: %w", err)
	}

	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, err
	}

	that.publish(existingGame, nil)

	return existingGame, nil
}

// MakeMove - moves the selected piece to square. A finished game is archived.
func (that *GameManager) MakeMove(ctx context.Context, gameID, playerID, square string) (*entity.Game, entity.AppliedMove, error) {
	log := that.logger.With("method", "MakeMove", "game_id", gameID)

	unlock := that.lockGame(gameID)
	defer unlock()

	existingGame, seat, err := that.seatedGame(ctx, gameID, playerID)
	if err != nil {
		return nil, entity.AppliedMove{}, err
	}

	if err = existingGame.ConfirmOngoingState(); err != nil {
		return nil, entity.AppliedMove{}, err
	}

	if seat.Team != existingGame.Turn {
		return nil, entity.AppliedMove{}, apperror.ErrNotYourTurn
	}

	coordinate, err := entity.ParseNotation(square)
	if err != nil {
		return nil, entity.AppliedMove{}, err
	}

	applied, err := kwazam.PlayMove(existingGame, coordinate.Index())
	if err != nil {
		return nil, entity.AppliedMove{}, fmt.Errorf("failed make move: %w", err)
	}

	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, entity.AppliedMove{}, err
	}

	log.Debug("move played",
		"from", applied.From.String(), "to", applied.To.String(),
		"captured", applied.Captured, "transformed", applied.Transformed)

	if existingGame.IsFinished() {
		log.Info("game finished", "winner", existingGame.Winner)
		that.archive(ctx, existingGame)
	}

	that.publish(existingGame, &applied)

	return existingGame, applied, nil
}

// RestartGame - puts the pieces back; both seats are kept.
func (that *GameManager) RestartGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	unlock := that.lockGame(gameID)
	defer unlock()

	existingGame, _, err := that.seatedGame(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	existingGame.Restart()

	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, err
	}

	that.publish(existingGame, nil)

	return existingGame, nil
}

// ClearHistory - forgets the recorded moves; the board is untouched.
func (that *GameManager) ClearHistory(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	unlock := that.lockGame(gameID)
	defer unlock()

	existingGame, _, err := that.seatedGame(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	existingGame.ClearMoveHistory()

	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, err
	}

	that.publish(existingGame, nil)

	return existingGame, nil
}

// ExportGame - the save record of a game.
func (that *GameManager) ExportGame(ctx context.Context, gameID string) ([]byte, error) {
	existingGame, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var record bytes.Buffer
	if err = savegame.Encode(&record, existingGame, time.Now()); err != nil {
		return nil, fmt.Errorf("failed encode game: %w", err)
	}

	return record.Bytes(), nil
}

// ImportGame - replaces the position of a game with a save record. The stored game is only
// touched once the whole record has been read.
func (that *GameManager) ImportGame(ctx context.Context, gameID, playerID string, record []byte) (*entity.Game, error) {
	unlock := that.lockGame(gameID)
	defer unlock()

	existingGame, _, err := that.seatedGame(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	loaded, err := savegame.Decode(bytes.NewReader(record))
	if err != nil {
		return nil, fmt.Errorf("failed load game: %w", err)
	}

	loaded.ID = existingGame.ID
	loaded.Players = existingGame.Players
	if !loaded.IsFinished() {
		loaded.Status = entity.StatusOngoing
		if len(loaded.Players) < maxPlayers {
			loaded.Status = entity.StatusWaiting
		}
	}

	if err = that.updateGame(ctx, loaded); err != nil {
		return nil, err
	}

	that.logger.Info("game loaded", "method", "ImportGame", "game_id", gameID, "status", loaded.Status)

	if loaded.IsFinished() {
		that.archive(ctx, loaded)
	}

	that.publish(loaded, nil)

	return loaded, nil
}

// ListArchive - finished games, most recent first.
func (that *GameManager) ListArchive(ctx context.Context, limit int) ([]*repository.ArchivedGame, error) {
	if limit <= 0 {
		limit = defaultArchiveLimit
	}

	games, err := that.archiveRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed list archive: %w", err)
	}

	return games, nil
}

// seatedGame - the game together with the caller's seat in it.
func (that *GameManager) seatedGame(ctx context.Context, gameID, playerID string) (*entity.Game, *entity.Player, error) {
	existingGame, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	seat, ok := existingGame.PlayerByID(playerID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: player %s, game %s", apperror.ErrNotInGame, playerID, gameID)
	}

	return existingGame, seat, nil
}

func (that *GameManager) archive(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "archive", "game_id", game.ID)

	finishedAt := time.Now()

	var record bytes.Buffer
	if err := savegame.Encode(&record, game, finishedAt); err != nil {
		log.Error("failed to encode finished game", "error", err)
		return
	}

	if err := that.archiveRepo.Save(ctx, repository.NewArchivedGame(game, record.String(), finishedAt)); err != nil {
		log.Error("failed to archive game", "error", err)
		return
	}

	log.Info("game archived")
}

func (that *GameManager) publish(game *entity.Game, move *entity.AppliedMove) {
	if that.publisher == nil {
		return
	}

	that.publisher.Publish(game.ID, game.View(), move)
}

func (that *GameManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	player := &entity.Player{
		ID: idgen.NewPlayerID(),
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
