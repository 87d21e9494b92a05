package rest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/rocketscienceinc/kwazam-backend/pkg/idgen"
)

const (
	playerHeader    = "X-Player-ID"
	localsPlayerID  = "playerID"
	maxArchiveLimit = 200
)

var validate = validator.New()

type SquareRequest struct {
	Square string `json:"square" validate:"required,len=2,alphanum"`
}

// parseBody - decodes and validates a JSON body into req.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	if err := validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		details := make([]string, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			switch fieldErr.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", fieldErr.Field()))
			case "len":
				details = append(details, fmt.Sprintf("%s must be %s characters", fieldErr.Field(), fieldErr.Param()))
			default:
				details = append(details, fmt.Sprintf("%s failed %s validation", fieldErr.Field(), fieldErr.Tag()))
			}
		}

		return fiber.NewError(fiber.StatusBadRequest, "validation failed: "+strings.Join(details, "; "))
	}

	return nil
}

// playerRequired - every game route acts on behalf of the player named by the X-Player-ID header.
func playerRequired(c *fiber.Ctx) error {
	playerID := c.Get(playerHeader)
	if playerID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, playerHeader+" header is required")
	}

	if !idgen.IsPlayerID(playerID) {
		return fiber.NewError(fiber.StatusBadRequest, playerHeader+" header is malformed")
	}

	c.Locals(localsPlayerID, playerID)

	return c.Next()
}

func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsPlayerID).(string)
	return id
}
