package entity

type Player struct {
	ID     string `json:"id"`
	Team   Team   `json:"team,omitempty"`
	GameID string `json:"game_id,omitempty"`
}
