package rest

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/rocketscienceinc/kwazam-backend/internal/apperror"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeIllegalMove    = "ILLEGAL_MOVE"
	codeConflict       = "GAME_STATE_CONFLICT"
	codeForbidden      = "NOT_IN_GAME"
	codeNotFound       = "NOT_FOUND"
	codeMalformedSave  = "MALFORMED_SAVE"
	codeRateLimited    = "RATE_LIMIT_EXCEEDED"
	codeInternal       = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings - checked in order, the first match wins.
var errorMappings = []errorMapping{
	{apperror.ErrGameNotFound, fiber.StatusNotFound, codeNotFound},
	{apperror.ErrPlayerNotFound, fiber.StatusNotFound, codeNotFound},
	{apperror.ErrNotInGame, fiber.StatusForbidden, codeForbidden},
	{apperror.ErrLoadParse, fiber.StatusUnprocessableEntity, codeMalformedSave},
	{apperror.ErrOutOfBounds, fiber.StatusBadRequest, codeIllegalMove},
	{apperror.ErrIllegalMove, fiber.StatusBadRequest, codeIllegalMove},
	{apperror.ErrNotYourTurn, fiber.StatusConflict, codeConflict},
	{apperror.ErrGameFinished, fiber.StatusConflict, codeConflict},
	{apperror.ErrGameIsNotStarted, fiber.StatusConflict, codeConflict},
	{apperror.ErrGameIsFull, fiber.StatusConflict, codeConflict},
}

func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code := codeInvalidRequest
			switch fiberErr.Code {
			case fiber.StatusNotFound:
				code = codeNotFound
			case fiber.StatusTooManyRequests:
				code = codeRateLimited
			}

			return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message, Code: code})
		}

		for _, mapping := range errorMappings {
			if errors.Is(err, mapping.target) {
				return c.Status(mapping.status).JSON(ErrorResponse{
					Error:   mapping.target.Error(),
					Code:    mapping.code,
					Details: err.Error(),
				})
			}
		}

		log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal server error",
			Code:  codeInternal,
		})
	}
}
