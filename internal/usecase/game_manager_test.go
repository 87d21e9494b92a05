package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/kwazam-backend/internal/apperror"
	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
	"github.com/rocketscienceinc/kwazam-backend/internal/repository"
)

var (
	errSomeError     = errors.New("some error")
	errStorageIsFull = errors.New("storage is full")
)

type deps struct {
	players   *mockPlayerRepo
	games     *mockGameRepo
	archive   *mockArchiveRepo
	publisher *mockPublisher
}

func newManager(t *testing.T) (*GameManager, deps) {
	t.Helper()

	d := deps{
		players:   &mockPlayerRepo{},
		games:     &mockGameRepo{},
		archive:   &mockArchiveRepo{},
		publisher: &mockPublisher{},
	}

	t.Cleanup(func() {
		d.players.AssertExpectations(t)
		d.games.AssertExpectations(t)
		d.archive.AssertExpectations(t)
		d.publisher.AssertExpectations(t)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewGameManager(logger, d.players, d.games, d.archive, d.publisher), d
}

func ongoingGame() *entity.Game {
	game := entity.NewGame("g1")
	game.Status = entity.StatusOngoing
	game.Players = []*entity.Player{
		{ID: "p1", Team: entity.TeamBlue, GameID: "g1"},
		{ID: "p2", Team: entity.TeamRed, GameID: "g1"},
	}

	return game
}

func selectSquare(t *testing.T, game *entity.Game, square string) {
	t.Helper()

	coordinate, err := entity.ParseNotation(square)
	require.NoError(t, err)
	game.Board.Select(&coordinate)
}

func TestGameManager_GetOrCreatePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new player when playerID is empty", func(t *testing.T) {
		// Given: a player repository that accepts writes
		manager, d := newManager(t)
		d.players.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Player")).Return(nil).Once()

		// When: calling GetOrCreatePlayer with an empty playerID
		player, err := manager.GetOrCreatePlayer(ctx, "")

		// Then: a new player is created
		require.NoError(t, err)
		assert.NotEmpty(t, player.ID)
	})

	t.Run("Returns existing player when playerID is not empty", func(t *testing.T) {
		manager, d := newManager(t)
		existingPlayer := &entity.Player{ID: "player123"}
		d.players.On("GetByID", mock.Anything, "player123").Return(existingPlayer, nil).Once()

		player, err := manager.GetOrCreatePlayer(ctx, "player123")

		require.NoError(t, err)
		assert.Equal(t, existingPlayer, player)
	})

	t.Run("Returns error if playerRepo.GetByID fails", func(t *testing.T) {
		manager, d := newManager(t)
		d.players.On("GetByID", mock.Anything, "playerErr").Return(nil, errSomeError).Once()

		player, err := manager.GetOrCreatePlayer(ctx, "playerErr")

		require.ErrorIs(t, err, errSomeError)
		assert.Nil(t, player)
	})

	t.Run("Returns error if playerRepo.CreateOrUpdate fails for new player", func(t *testing.T) {
		manager, d := newManager(t)
		d.players.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Player")).Return(errStorageIsFull).Once()

		player, err := manager.GetOrCreatePlayer(ctx, "")

		require.ErrorIs(t, err, errStorageIsFull)
		assert.Nil(t, player)
	})
}

func TestGameManager_CreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a waiting game with the creator on Blue", func(t *testing.T) {
		// Given: a player without a game
		manager, d := newManager(t)
		d.players.On("GetByID", mock.Anything, "p1").Return(&entity.Player{ID: "p1"}, nil).Once()
		d.players.On("CreateOrUpdate", mock.Anything, mock.MatchedBy(func(player *entity.Player) bool {
			return player.Team == entity.TeamBlue && player.GameID != ""
		})).Return(nil).Once()
		d.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: creating a game
		game, err := manager.CreateGame(ctx, "p1")

		// Then: the game waits for a second player
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, entity.StatusWaiting, game.Status)
		require.Len(t, game.Players, 1)
		assert.Equal(t, entity.TeamBlue, game.Players[0].Team)
		assert.Equal(t, entity.InitialPieceCount, game.Board.PieceCount())
	})

	t.Run("Returns the unfinished game the player is already in", func(t *testing.T) {
		manager, d := newManager(t)
		existingGame := ongoingGame()
		d.players.On("GetByID", mock.Anything, "p1").Return(existingGame.Players[0], nil).Once()
		d.games.On("GetByID", mock.Anything, "g1").Return(existingGame, nil).Once()

		game, err := manager.CreateGame(ctx, "p1")

		require.NoError(t, err)
		assert.Same(t, existingGame, game)
	})

	t.Run("Creates a new game when the previous one is finished", func(t *testing.T) {
		manager, d := newManager(t)
		finished := ongoingGame()
		finished.Status = entity.StatusFinished
		d.players.On("GetByID", mock.Anything, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		d.games.On("GetByID", mock.Anything, "g1").Return(finished, nil).Once()
		d.players.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Player")).Return(nil).Once()
		d.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		game, err := manager.CreateGame(ctx, "p1")

		require.NoError(t, err)
		assert.NotEqual(t, "g1", game.ID)
	})

	t.Run("Returns error for an unknown player", func(t *testing.T) {
		manager, d := newManager(t)
		d.players.On("GetByID", mock.Anything, "ghost").Return(nil, apperror.ErrPlayerNotFound).Once()

		game, err := manager.CreateGame(ctx, "ghost")

		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
		assert.Nil(t, game)
	})
}

func TestGameManager_JoinGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Second player takes Red and the game starts", func(t *testing.T) {
		// Given: a game waiting for its second player
		manager, d := newManager(t)
		waiting := entity.NewGame("g1")
		waiting.Players = []*entity.Player{{ID: "p1", Team: entity.TeamBlue, GameID: "g1"}}
		d.games.On("GetByID", mock.Anything, "g1").Return(waiting, nil).Once()
		d.players.On("GetByID", mock.Anything, "p2").Return(&entity.Player{ID: "p2"}, nil).Once()
		d.players.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Player")).Return(nil).Once()
		d.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		d.publisher.On("Publish", "g1", mock.AnythingOfType("entity.GameView"), (*entity.AppliedMove)(nil)).Once()

		// When: the second player joins
		game, err := manager.JoinGame(ctx, "g1", "p2")

		// Then: they play Red and the game is ongoing
		require.NoError(t, err)
		assert.Equal(t, entity.StatusOngoing, game.Status)
		seat, ok := game.PlayerByID("p2")
		require.True(t, ok)
		assert.Equal(t, entity.TeamRed, seat.Team)
		assert.Equal(t, "g1", seat.GameID)
	})

	t.Run("Joining a game twice changes nothing", func(t *testing.T) {
		manager, d := newManager(t)
		d.games.On("GetByID", mock.Anything, "g1").Return(ongoingGame(), nil).Once()
		d.players.On("GetByID", mock.Anything, "p2").Return(&entity.Player{ID: "p2", GameID: "g1"}, nil).Once()

		game, err := manager.JoinGame(ctx, "g1", "p2")

		require.NoError(t, err)
		assert.Len(t, game.Players, 2)
	})

	t.Run("Returns ErrGameIsFull for a third player", func(t *testing.T) {
		manager, d := newManager(t)
		d.games.On("GetByID", mock.Anything, "g1").Return(ongoingGame(), nil).Once()
		d.players.On("GetByID", mock.Anything, "p3").Return(&entity.Player{ID: "p3"}, nil).Once()

		game, err := manager.JoinGame(ctx, "g1", "p3")

		require.ErrorIs(t, err, apperror.ErrGameIsFull)
		assert.Nil(t, game)
	})

	t.Run("Returns ErrGameNotFound for an unknown game", func(t *testing.T) {
		manager, d := newManager(t)
		d.games.On("GetByID", mock.Anything, "nope").Return(&entity.Game{}, apperror.ErrGameNotFound).Once()

		_, err := manager.JoinGame(ctx, "nope", "p2")

		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_SelectPiece(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores the selection of the player to move", func(t *testing.T) {
		// Given: an ongoing game
		manager, d := newManager(t)
		d.games.On("GetByID", mock.Anything, "g1").Return(ongoingGame(), nil).Once()
		d.games.On("CreateOrUpdate", mock.Anything, mock.MatchedBy(func(game *entity.Game) bool {
			return game.Board.Selected() != nil
		})).Return(nil).Once()
		d.publisher.On("Publish", "g1", mock.AnythingOfType("entity.GameView"), (*entity.AppliedMove)(nil)).Once()

		// When: Blue selects its Ram on C2
		game, err := manager.SelectPiece(ctx, "g1", "p1", "c2")

		// Then: the Ram's only move is offered
		require.NoError(t, err)
		assert.Equal(t, []string{"C3"}, game.View().ValidMoves)
	})

	t.Run("Returns ErrNotYourTurn for the waiting side", func(t *testing.T) {
		manager, d := newManager(t)
		d.games.On("GetByID", mock.Anything, "g1").Return(ongoingGame(), nil).Once()

		_, err := manager.SelectPiece(ctx, "g1", "p2", "C7")

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Returns ErrNotInGame for an outsider", func(t *testing.T) {
		manager, d := newManager(t)
		d.games.On("GetByID", mock.Anything, "g1").Return(ongoingGame(), nil).Once()

		_, err := manager.SelectPiece(ctx, "g1", "p3", "C2")

		assert.ErrorIs(t, err, apperror.ErrNotInGame)
	})

	t.Run("Returns ErrGameIsNotStarted while waiting", func(t *testing.T) {
		manager, d := newManager(t)
		waiting := ongoingGame()
		waiting.Status = entity.StatusWaiting
		d.games.On("GetByID", mock.Anything, "g1").Return(waiting, nil).Once()

		_, err := manager.SelectPiece(ctx, "g1", "p1", "C2")

		assert.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
	})

	t.Run("Returns ErrOutOfBounds for a bad square", func(t *testing.T) {
		manager, d := newManager(t)
		d.games.On("GetByID", mock.Anything, "g1").Return(ongoingGame(), nil).Once()

		_, err := manager.SelectPiece(ctx, "g1", "p1", "Z9")

		assert.ErrorIs(t, err, apperror.ErrOutOfBounds)
	})
}

func TestGameManager_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves the selected piece and hands the turn over", func(t *testing.T) {
		// Given: Blue has selected its Ram on C2
		manager, d := newManager(t)
		game := ongoingGame()
		selectSquare(t, game, "C2")
		d.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		d.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		d.publisher.On("Publish", "g1", mock.MatchedBy(func(view entity.GameView) bool {
			return view.Turn == entity.TeamRed
		}), mock.MatchedBy(func(move *entity.AppliedMove) bool {
			return move != nil && move.To.String() == "C3"
		})).Once()

		// When: the Ram steps to C3
		updated, applied, err := manager.MakeMove(ctx, "g1", "p1", "C3")

		// Then: Red is to move and the move is recorded
		require.NoError(t, err)
		assert.Equal(t, "C2", applied.From.String())
		assert.Equal(t, "C3", applied.To.String())
		assert.Equal(t, entity.TeamRed, updated.Turn)
		assert.Equal(t, []string{"C3"}, updated.MoveHistory)
	})

	t.Run("Returns ErrNotYourTurn when Red moves first", func(t *testing.T) {
		manager, d := newManager(t)
		d.games.On("GetByID", mock.Anything, "g1").Return(ongoingGame(), nil).Once()

		_, _, err := manager.MakeMove(ctx, "g1", "p2", "C6")

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Illegal move is not stored", func(t *testing.T) {
		manager, d := newManager(t)
		game := ongoingGame()
		selectSquare(t, game, "C2")
		d.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()

		_, _, err := manager.MakeMove(ctx, "g1", "p1", "C5")

		assert.ErrorIs(t, err, apperror.ErrIllegalMove)
	})

	t.Run("Capturing the last Sau finishes and archives the game", func(t *testing.T) {
		// Given: a Blue Tor facing the Red Sau
		manager, d := newManager(t)
		game := ongoingGame()
		board := entity.NewEmptyBoard()
		board.Place(entity.CreatePiece(entity.Tor, entity.Coordinate{Row: 3, Column: 2}, entity.TeamBlue, false))
		board.Place(entity.CreatePiece(entity.Sau, entity.Coordinate{Row: 7, Column: 2}, entity.TeamBlue, false))
		board.Place(entity.CreatePiece(entity.Sau, entity.Coordinate{Row: 1, Column: 2}, entity.TeamRed, false))
		board.SetPieceCount(3)
		game.Board = board
		selectSquare(t, game, "C5")

		d.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		d.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		d.archive.On("Save", mock.Anything, mock.MatchedBy(func(archived *repository.ArchivedGame) bool {
			return archived.GameID == "g1" && archived.Winner == entity.TeamBlue &&
				archived.BluePlayerID == "p1" && archived.RedPlayerID == "p2" &&
				strings.Contains(archived.Record, "---ROUND---")
		})).Return(nil).Once()
		d.publisher.On("Publish", "g1", mock.AnythingOfType("entity.GameView"), mock.MatchedBy(func(move *entity.AppliedMove) bool {
			return move != nil && move.Captured && move.CapturedKind == entity.Sau
		})).Once()

		// When: the Tor takes the Sau
		updated, applied, err := manager.MakeMove(ctx, "g1", "p1", "C7")

		// Then: Blue wins
		require.NoError(t, err)
		assert.True(t, applied.Captured)
		assert.True(t, updated.IsFinished())
		assert.Equal(t, entity.TeamBlue, updated.Winner)
	})

	t.Run("Archive failure does not fail the move", func(t *testing.T) {
		manager, d := newManager(t)
		game := ongoingGame()
		board := entity.NewEmptyBoard()
		board.Place(entity.CreatePiece(entity.Tor, entity.Coordinate{Row: 3, Column: 2}, entity.TeamBlue, false))
		board.Place(entity.CreatePiece(entity.Sau, entity.Coordinate{Row: 7, Column: 2}, entity.TeamBlue, false))
		board.Place(entity.CreatePiece(entity.Sau, entity.Coordinate{Row: 1, Column: 2}, entity.TeamRed, false))
		board.SetPieceCount(3)
		game.Board = board
		selectSquare(t, game, "C5")

		d.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		d.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		d.archive.On("Save", mock.Anything, mock.AnythingOfType("*repository.ArchivedGame")).Return(errSomeError).Once()
		d.publisher.On("Publish", "g1", mock.AnythingOfType("entity.GameView"), mock.MatchedBy(func(move *entity.AppliedMove) bool {
			return move != nil && move.Captured && move.CapturedKind == entity.Sau
		})).Once()

		updated, _, err := manager.MakeMove(ctx, "g1", "p1", "C7")

		require.NoError(t, err)
		assert.True(t, updated.IsFinished())
	})

	t.Run("Returns error when the game cannot be stored", func(t *testing.T) {
		manager, d := newManager(t)
		game := ongoingGame()
		selectSquare(t, game, "C2")
		d.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		d.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(errStorageIsFull).Once()

		_, _, err := manager.MakeMove(ctx, "g1", "p1", "C3")

		assert.ErrorIs(t, err, errStorageIsFull)
	})
}

func TestGameManager_RestartGame(t *testing.T) {
	// Given: a finished game
	manager, d := newManager(t)
	game := ongoingGame()
	game.Status = entity.StatusFinished
	game.Winner = entity.TeamRed
	game.MoveHistory = []string{"C3"}
	d.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
	d.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
	d.publisher.On("Publish", "g1", mock.AnythingOfType("entity.GameView"), (*entity.AppliedMove)(nil)).Once()

	// When: one of its players restarts it
	restarted, err := manager.RestartGame(context.Background(), "g1", "p2")

	// Then: a fresh game starts with the same seats
	require.NoError(t, err)
	assert.Equal(t, entity.StatusOngoing, restarted.Status)
	assert.Equal(t, entity.TeamNone, restarted.Winner)
	assert.Empty(t, restarted.MoveHistory)
	assert.Len(t, restarted.Players, 2)
}

func TestGameManager_ClearHistory(t *testing.T) {
	manager, d := newManager(t)
	game := ongoingGame()
	game.MoveHistory = []string{"C3", "C6"}
	d.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
	d.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
	d.publisher.On("Publish", "g1", mock.AnythingOfType("entity.GameView"), (*entity.AppliedMove)(nil)).Once()

	cleared, err := manager.ClearHistory(context.Background(), "g1", "p1")

	require.NoError(t, err)
	assert.Empty(t, cleared.MoveHistory)
	assert.Equal(t, entity.InitialPieceCount, cleared.Board.PieceCount())
}

func TestGameManager_ExportImport(t *testing.T) {
	ctx := context.Background()

	t.Run("Exported record loads back into the game", func(t *testing.T) {
		// Given: a game after one move, exported
		manager, d := newManager(t)
		source := ongoingGame()
		selectSquare(t, source, "C2")
		_, err := source.Board.ApplyMove(entity.ToIndex(5, 2))
		require.NoError(t, err)
		source.Turn = entity.TeamRed
		source.MoveHistory = []string{"C3"}
		d.games.On("GetByID", mock.Anything, "src").Return(source, nil).Once()

		record, err := manager.ExportGame(ctx, "src")
		require.NoError(t, err)
		assert.Contains(t, string(record), "RedState")

		d.games.On("GetByID", mock.Anything, "g1").Return(ongoingGame(), nil).Once()
		d.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		d.publisher.On("Publish", "g1", mock.AnythingOfType("entity.GameView"), (*entity.AppliedMove)(nil)).Once()

		// When: importing it into another game
		loaded, err := manager.ImportGame(ctx, "g1", "p1", record)

		// Then: the position is replaced and the seats are kept
		require.NoError(t, err)
		assert.Equal(t, "g1", loaded.ID)
		assert.Equal(t, entity.TeamRed, loaded.Turn)
		assert.Equal(t, []string{"C3"}, loaded.MoveHistory)
		assert.Equal(t, entity.StatusOngoing, loaded.Status)
		assert.Len(t, loaded.Players, 2)
	})

	t.Run("Malformed record leaves the stored game alone", func(t *testing.T) {
		manager, d := newManager(t)
		d.games.On("GetByID", mock.Anything, "g1").Return(ongoingGame(), nil).Once()

		record := []byte("---STATE---\nGreenstate\n---BOARD---\n")

		loaded, err := manager.ImportGame(ctx, "g1", "p1", record)

		require.ErrorIs(t, err, apperror.ErrLoadParse)
		assert.Nil(t, loaded)
		d.games.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Export of an unknown game fails", func(t *testing.T) {
		manager, d := newManager(t)
		d.games.On("GetByID", mock.Anything, "nope").Return(&entity.Game{}, apperror.ErrGameNotFound).Once()

		_, err := manager.ExportGame(ctx, "nope")

		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_ListArchive(t *testing.T) {
	manager, d := newManager(t)
	archived := []*repository.ArchivedGame{{GameID: "g1", Winner: entity.TeamBlue}}
	d.archive.On("List", mock.Anything, defaultArchiveLimit).Return(archived, nil).Once()

	games, err := manager.ListArchive(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, archived, games)
}

func heldLocks(manager *GameManager) int {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	return len(manager.locks)
}

func TestGameManager_LockGame(t *testing.T) {
	t.Run("Lock is forgotten after the last unlock", func(t *testing.T) {
		manager, _ := newManager(t)

		unlock := manager.lockGame("g1")
		assert.Equal(t, 1, heldLocks(manager))

		unlock()
		assert.Zero(t, heldLocks(manager))
	})

	t.Run("Second caller waits and keeps the lock alive", func(t *testing.T) {
		// Given: g1 is held and a second caller queues for it
		manager, _ := newManager(t)
		unlockFirst := manager.lockGame("g1")

		acquired := make(chan func(), 1)
		go func() {
			acquired <- manager.lockGame("g1")
		}()

		require.Eventually(t, func() bool {
			manager.mu.Lock()
			defer manager.mu.Unlock()
			return manager.locks["g1"] != nil && manager.locks["g1"].refs == 2
		}, time.Second, time.Millisecond)

		select {
		case <-acquired:
			t.Fatal("second caller got the lock while the first held it")
		default:
		}

		// When: the first holder unlocks
		unlockFirst()

		// Then: the second caller gets the same lock, and the entry goes with the last unlock
		unlockSecond := <-acquired
		assert.Equal(t, 1, heldLocks(manager))
		unlockSecond()
		assert.Zero(t, heldLocks(manager))
	})
}
