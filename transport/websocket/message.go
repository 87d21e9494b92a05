package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
)

const (
	actionSelect = "game:select"
	actionMove   = "game:move"
	actionUpdate = "game:update"
	actionError  = "game:error"
)

// Message - the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type SquarePayload struct {
	Square string `json:"square"`
}

type ResponsePayload struct {
	Game  *entity.GameView    `json:"game,omitempty"`
	Move  *entity.AppliedMove `json:"move,omitempty"`
	Error string              `json:"error,omitempty"`
}

func newMessage(action string, payload ResponsePayload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	message, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return message, nil
}

func errorMessage(err error) []byte {
	message, marshalErr := newMessage(actionError, ResponsePayload{Error: err.Error()})
	if marshalErr != nil {
		return []byte(`{"action":"` + actionError + `"}`)
	}

	return message
}
