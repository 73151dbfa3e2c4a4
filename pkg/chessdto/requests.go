package chessdto

type NewGameRequest struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
}

type PlayRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PositionRequest selects a position by FEN or by session id. GameID wins
// when both are set.
type PositionRequest struct {
	Position   string `json:"position"`
	GameID     string `json:"gameId"`
	Difficulty string `json:"difficulty"`
}

// MoveCheckRequest validates Move ("e2e4", "e2-e4") or From/To against a
// FEN. An empty position means the initial layout.
type MoveCheckRequest struct {
	Position string `json:"position"`
	Move     string `json:"move"`
	From     string `json:"from"`
	To       string `json:"to"`
}
