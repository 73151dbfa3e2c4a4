package chesspresenter

import (
	"encoding/base64"

	"github.com/park285/playpad-server/pkg/chessdto"
)

// BoardImage wraps a rendered PNG as a data URL for JSON clients.
func BoardImage(gameID string, png []byte) *chessdto.BoardImageResponse {
	if len(png) == 0 {
		return &chessdto.BoardImageResponse{GameID: gameID}
	}
	return &chessdto.BoardImageResponse{
		GameID: gameID,
		Image:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}
}
