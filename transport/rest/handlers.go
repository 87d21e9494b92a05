package rest

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
	"github.com/rocketscienceinc/kwazam-backend/internal/repository"
)

type gameManager interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	CreateGame(ctx context.Context, playerID string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	SelectPiece(ctx context.Context, gameID, playerID, square string) (*entity.Game, error)
	MakeMove(ctx context.Context, gameID, playerID, square string) (*entity.Game, entity.AppliedMove, error)
	RestartGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	ClearHistory(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	ExportGame(ctx context.Context, gameID string) ([]byte, error)
	ImportGame(ctx context.Context, gameID, playerID string, record []byte) (*entity.Game, error)
	ListArchive(ctx context.Context, limit int) ([]*repository.ArchivedGame, error)
}

type MoveResponse struct {
	Game entity.GameView    `json:"game"`
	Move entity.AppliedMove `json:"move"`
}

type handlers struct {
	logger  *slog.Logger
	manager gameManager
}

// CreatePlayer - returns the player named by X-Player-ID, or registers a new one.
func (that *handlers) CreatePlayer(c *fiber.Ctx) error {
	player, err := that.manager.GetOrCreatePlayer(c.UserContext(), c.Get(playerHeader))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(player)
}

func (that *handlers) CreateGame(c *fiber.Ctx) error {
	game, err := that.manager.CreateGame(c.UserContext(), playerID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(game.View())
}

func (that *handlers) GetGame(c *fiber.Ctx) error {
	game, err := that.manager.GetGame(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(game.View())
}

func (that *handlers) JoinGame(c *fiber.Ctx) error {
	game, err := that.manager.JoinGame(c.UserContext(), c.Params("id"), playerID(c))
	if err != nil {
		return err
	}

	return c.JSON(game.View())
}

func (that *handlers) SelectPiece(c *fiber.Ctx) error {
	var req SquareRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	game, err := that.manager.SelectPiece(c.UserContext(), c.Params("id"), playerID(c), req.Square)
	if err != nil {
		return err
	}

	return c.JSON(game.View())
}

func (that *handlers) MakeMove(c *fiber.Ctx) error {
	var req SquareRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	game, applied, err := that.manager.MakeMove(c.UserContext(), c.Params("id"), playerID(c), req.Square)
	if err != nil {
		return err
	}

	return c.JSON(MoveResponse{Game: game.View(), Move: applied})
}

func (that *handlers) RestartGame(c *fiber.Ctx) error {
	game, err := that.manager.RestartGame(c.UserContext(), c.Params("id"), playerID(c))
	if err != nil {
		return err
	}

	return c.JSON(game.View())
}

func (that *handlers) ClearHistory(c *fiber.Ctx) error {
	game, err := that.manager.ClearHistory(c.UserContext(), c.Params("id"), playerID(c))
	if err != nil {
		return err
	}

	return c.JSON(game.View())
}

// ExportGame - the save record as a text download.
func (that *handlers) ExportGame(c *fiber.Ctx) error {
	record, err := that.manager.ExportGame(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Attachment("kwazam-" + c.Params("id") + "-" + time.Now().UTC().Format("20060102-150405") + ".txt")

	return c.Send(record)
}

// ImportGame - replaces the position with the save record in the request body.
func (that *handlers) ImportGame(c *fiber.Ctx) error {
	record := c.Body()
	if len(record) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "save record is empty")
	}

	game, err := that.manager.ImportGame(c.UserContext(), c.Params("id"), playerID(c), record)
	if err != nil {
		return err
	}

	return c.JSON(game.View())
}

func (that *handlers) ListArchive(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 || limit > maxArchiveLimit {
		return fiber.NewError(fiber.StatusBadRequest, "limit is out of range")
	}

	games, err := that.manager.ListArchive(c.UserContext(), limit)
	if err != nil {
		return err
	}

	return c.JSON(games)
}
