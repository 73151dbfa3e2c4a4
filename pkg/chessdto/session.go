// Package chessdto holds the JSON shapes of the chess HTTP API.
package chessdto

import "time"

// Piece mirrors the front-end board cell: {"type":"pawn","color":"white"}.
type Piece struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

type MaterialScore struct {
	White int `json:"white"`
	Black int `json:"black"`
	Diff  int `json:"diff"`
}

// CapturedPieces lists piece types taken by each side.
type CapturedPieces struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

// SessionState is the board snapshot returned by every session call. Empty
// squares are null.
type SessionState struct {
	GameID     string         `json:"gameId"`
	Mode       string         `json:"mode"`
	Difficulty string         `json:"difficulty"`
	Board      [][]*Piece     `json:"board"`
	Turn       string         `json:"currentPlayer"`
	FEN        string         `json:"fen"`
	Status     string         `json:"status"`
	MoveNumber int            `json:"moveNumber"`
	History    []string       `json:"moveHistory"`
	LastMove   *MoveRecord    `json:"lastMove,omitempty"`
	Material   MaterialScore  `json:"material"`
	Captured   CapturedPieces `json:"captured"`
	StartedAt  time.Time      `json:"startedAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// BoardImageResponse carries the board PNG as a data URL.
type BoardImageResponse struct {
	GameID string `json:"gameId"`
	Image  string `json:"image"`
}
