package chessdto

// MoveRecord is one applied move. Notation is "e2-e4", "e4-d5x" on captures.
type MoveRecord struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Piece     Piece  `json:"piece"`
	Captured  *Piece `json:"captured,omitempty"`
	Notation  string `json:"notation"`
	Automated bool   `json:"automated,omitempty"`
}

// PlayResponse reports a session move. Success is false for illegal moves,
// with the unchanged state.
type PlayResponse struct {
	Success bool          `json:"success"`
	Move    *MoveRecord   `json:"move,omitempty"`
	Reply   *MoveRecord   `json:"reply,omitempty"`
	State   *SessionState `json:"state"`
}

// DestinationsResponse lists legal target squares for a selected piece.
type DestinationsResponse struct {
	From         string   `json:"from"`
	Destinations []string `json:"destinations"`
}

// MoveCheckResponse answers /api/chess/move.
type MoveCheckResponse struct {
	Success    bool   `json:"success"`
	Move       string `json:"move"`
	FEN        string `json:"fen,omitempty"`
	Evaluation string `json:"evaluation,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}
