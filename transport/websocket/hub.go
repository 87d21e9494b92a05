package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
	"github.com/rocketscienceinc/kwazam-backend/pkg/idgen"
)

const sendBuffer = 16

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrBadPayload    = errors.New("malformed payload")
)

type gameplay interface {
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	SelectPiece(ctx context.Context, gameID, playerID, square string) (*entity.Game, error)
	MakeMove(ctx context.Context, gameID, playerID, square string) (*entity.Game, entity.AppliedMove, error)
}

// conn - the part of a websocket connection the hub uses.
type conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type client struct {
	playerID string
	conn     conn
	send     chan []byte
}

// Hub - fans game snapshots out to every connection watching a game.
type Hub struct {
	logger   *slog.Logger
	gameplay gameplay

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "websocket"),
		clients: make(map[string]map[*client]struct{}),
	}
}

// SetGameplay - the hub publishes for the game manager and forwards moves to it, so the two are
// wired after both exist.
func (that *Hub) SetGameplay(gameplay gameplay) {
	that.gameplay = gameplay
}

// Register - mounts /ws/games/:id on router.
func (that *Hub) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		playerID := c.Query("player_id")
		if !idgen.IsPlayerID(playerID) {
			return fiber.NewError(fiber.StatusUnauthorized, "player_id query parameter is required")
		}
		c.Locals("playerID", playerID)

		return c.Next()
	})

	router.Get("/ws/games/:id", websocket.New(func(c *websocket.Conn) {
		playerID, _ := c.Locals("playerID").(string)
		that.Serve(context.Background(), c, c.Params("id"), playerID)
	}))
}

// Publish - queues a game:update for every connection of the game. Slow connections are dropped.
// move is attached when the update comes from a move.
func (that *Hub) Publish(gameID string, view entity.GameView, move *entity.AppliedMove) {
	message, err := newMessage(actionUpdate, ResponsePayload{Game: &view, Move: move})
	if err != nil {
		that.logger.Error("failed to build update", "game_id", gameID, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for c := range that.clients[gameID] {
		select {
		case c.send <- message:
		default:
			that.logger.Warn("dropping slow connection", "game_id", gameID, "player_id", c.playerID)
			c.conn.Close()
		}
	}
}

// Serve - runs one connection until it closes: a snapshot first, then requests in order.
func (that *Hub) Serve(ctx context.Context, ws conn, gameID, playerID string) {
	log := that.logger.With("game_id", gameID, "player_id", playerID)

	c := &client{playerID: playerID, conn: ws, send: make(chan []byte, sendBuffer)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		that.writeLoop(c)
	}()

	defer func() {
		that.remove(gameID, c)
		close(c.send)
		<-done
		ws.Close()
		log.Debug("connection closed")
	}()

	game, err := that.gameplay.GetGame(ctx, gameID)
	if err != nil {
		c.send <- errorMessage(err)
		return
	}

	that.add(gameID, c)
	log.Debug("connection opened")

	if snapshot, err := newMessage(actionUpdate, ResponsePayload{Game: viewOf(game)}); err == nil {
		c.send <- snapshot
	}

	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		if reply := that.handleMessage(ctx, gameID, playerID, data); reply != nil {
			select {
			case c.send <- reply:
			default:
				return
			}
		}
	}
}

// handleMessage - runs one request. Successful requests are answered through Publish; the
// returned frame, if any, goes to the sender only.
func (that *Hub) handleMessage(ctx context.Context, gameID, playerID string, data []byte) []byte {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		return errorMessage(fmt.Errorf("%w: %w", ErrBadPayload, err))
	}

	var payload SquarePayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil || payload.Square == "" {
		return errorMessage(fmt.Errorf("%w: square is required", ErrBadPayload))
	}

	var err error
	switch message.Action {
	case actionSelect:
		_, err = that.gameplay.SelectPiece(ctx, gameID, playerID, payload.Square)
	case actionMove:
		_, _, err = that.gameplay.MakeMove(ctx, gameID, playerID, payload.Square)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, message.Action)
	}

	if err != nil {
		that.logger.Debug("request rejected", "game_id", gameID, "action", message.Action, "error", err)
		return errorMessage(err)
	}

	return nil
}

func (that *Hub) writeLoop(c *client) {
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}

func (that *Hub) add(gameID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.clients[gameID] == nil {
		that.clients[gameID] = make(map[*client]struct{})
	}
	that.clients[gameID][c] = struct{}{}
}

func (that *Hub) remove(gameID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.clients[gameID], c)
	if len(that.clients[gameID]) == 0 {
		delete(that.clients, gameID)
	}
}

// Connections - number of open connections watching a game.
func (that *Hub) Connections(gameID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients[gameID])
}

func viewOf(game *entity.Game) *entity.GameView {
	view := game.View()
	return &view
}
