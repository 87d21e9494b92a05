package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
	"github.com/rocketscienceinc/kwazam-backend/internal/repository"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)

	player, _ := args.Get(0).(*entity.Player)

	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)

	game, _ := args.Get(0).(*entity.Game)

	return game, args.Error(1)
}

type mockArchiveRepo struct {
	mock.Mock
}

func (that *mockArchiveRepo) Save(ctx context.Context, game *repository.ArchivedGame) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockArchiveRepo) List(ctx context.Context, limit int) ([]*repository.ArchivedGame, error) {
	args := that.Called(ctx, limit)

	games, _ := args.Get(0).([]*repository.ArchivedGame)

	return games, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (that *mockPublisher) Publish(gameID string, view entity.GameView, move *entity.AppliedMove) {
	that.Called(gameID, view, move)
}
