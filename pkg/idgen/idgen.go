// Package idgen generates identifiers for games and players.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewGameID - a short, URL-safe game identifier.
func NewGameID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// NewPlayerID - a random session identifier for a player.
func NewPlayerID() string {
	return uuid.NewString()
}

// IsPlayerID - reports whether id could have come from NewPlayerID.
func IsPlayerID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
