package entity

// PieceView - what a client needs to draw one piece.
type PieceView struct {
	Square    string    `json:"square"`
	Kind      PieceKind `json:"kind"`
	Team      Team      `json:"team"`
	IconPath  string    `json:"icon_path"`
	Direction Direction `json:"direction,omitempty"`
}

// GameView - read-only projection of a game for transports.
type GameView struct {
	ID          string      `json:"id"`
	Status      string      `json:"status"`
	Turn        Team        `json:"turn"`
	Winner      Team        `json:"winner,omitempty"`
	Round       int         `json:"round"`
	PieceCount  int         `json:"piece_count"`
	MoveHistory []string    `json:"move_history"`
	Pieces      []PieceView `json:"pieces"`
	Selected    string      `json:"selected,omitempty"`
	ValidMoves  []string    `json:"valid_moves"`
	Players     []*Player   `json:"players,omitempty"`
}

func (that *Game) View() GameView {
	view := GameView{
		ID:          that.ID,
		Status:      that.Status,
		Turn:        that.Turn,
		Winner:      that.Winner,
		Round:       that.Round,
		PieceCount:  that.Board.PieceCount(),
		MoveHistory: append([]string{}, that.MoveHistory...),
		Pieces:      []PieceView{},
		ValidMoves:  []string{},
		Players:     that.Players,
	}

	for _, piece := range that.Board.Pieces() {
		pieceView := PieceView{
			Square:   piece.Position.String(),
			Kind:     piece.Kind,
			Team:     piece.Team,
			IconPath: piece.IconPath,
		}
		if piece.Ram != nil {
			pieceView.Direction = piece.Ram.Direction
		}
		view.Pieces = append(view.Pieces, pieceView)
	}

	if selected := that.Board.Selected(); selected != nil {
		view.Selected = selected.Position.String()
	}

	for _, move := range that.CurrentValidMoves() {
		view.ValidMoves = append(view.ValidMoves, move.String())
	}

	return view
}
