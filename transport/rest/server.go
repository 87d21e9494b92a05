package rest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/rocketscienceinc/kwazam-backend/internal/config"
)

type Server struct {
	logger *slog.Logger
	app    *fiber.App
}

// New - builds the HTTP API. Extra routes, such as the websocket endpoint, are mounted with mount.
func New(logger *slog.Logger, conf config.HTTP, manager gameManager, mount ...func(router fiber.Router)) *Server {
	log := logger.With("component", "rest")

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: conf.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + playerHeader,
	}))

	app.Get("/ping", ping)

	for _, m := range mount {
		m(app)
	}

	api := app.Group("/api/v1")
	if conf.RequestsPerMin > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        conf.RequestsPerMin,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
					Error: "rate limit exceeded",
					Code:  codeRateLimited,
				})
			},
		}))
	}

	h := &handlers{logger: log, manager: manager}

	api.Post("/players", h.CreatePlayer)
	api.Get("/archive", h.ListArchive)

	games := api.Group("/games", playerRequired)
	games.Post("/", h.CreateGame)
	games.Get("/:id", h.GetGame)
	games.Post("/:id/join", h.JoinGame)
	games.Post("/:id/select", h.SelectPiece)
	games.Post("/:id/moves", h.MakeMove)
	games.Post("/:id/restart", h.RestartGame)
	games.Get("/:id/save", h.ExportGame)
	games.Put("/:id/save", h.ImportGame)
	games.Delete("/:id/history", h.ClearHistory)

	return &Server{logger: log, app: app}
}

func (that *Server) App() *fiber.App {
	return that.app
}

func (that *Server) Start(port string) error {
	that.logger.Info("Starting HTTP server", "port", port)

	if err := that.app.Listen(":" + port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	return nil
}
