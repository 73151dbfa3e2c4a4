package chess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/park285/playpad-server/internal/board"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Piece silhouettes on a 45x45 canvas.
var pieceShapes = map[board.Kind]string{
	board.Pawn: `<circle cx="22.5" cy="13" r="5.5"/>` +
		`<path d="M17 34 L28 34 L26 20 L19 20 Z"/>` +
		`<rect x="11" y="34" width="23" height="6" rx="1.5"/>`,
	board.Rook: `<path d="M12 9 h5 v4 h3 v-4 h5 v4 h3 v-4 h5 v8 h-21 Z"/>` +
		`<rect x="15" y="17" width="15" height="16"/>` +
		`<rect x="11" y="33" width="23" height="7" rx="1.5"/>`,
	board.Knight: `<path d="M13 40 h21 v-5 h-3 c0 -8 2 -14 -2 -20 c-3 -5 -9 -7 -14 -6 l-4 7 l4 2 l-1 4 c3 1 6 0 8 -2 c0 5 -6 8 -7 15 h-2 Z"/>` +
		`<circle cx="19" cy="13" r="1.2"/>`,
	board.Bishop: `<circle cx="22.5" cy="8" r="2.5"/>` +
		`<path d="M22.5 11 C16 16 14 21 17 27 L28 27 C31 21 29 16 22.5 11 Z"/>` +
		`<rect x="16" y="27" width="13" height="3"/>` +
		`<path d="M12 40 L33 40 L33 36 C30 33 28 30 28 30 L17 30 C17 30 15 33 12 36 Z"/>`,
	board.Queen: `<circle cx="9" cy="13" r="2.2"/><circle cx="16" cy="9" r="2.2"/><circle cx="22.5" cy="7.5" r="2.2"/>` +
		`<circle cx="29" cy="9" r="2.2"/><circle cx="36" cy="13" r="2.2"/>` +
		`<path d="M9 15 L13 33 L32 33 L36 15 L30 24 L29 11 L24.5 23 L22.5 10 L20.5 23 L16 11 L15 24 Z"/>` +
		`<rect x="12" y="33" width="21" height="7" rx="1.5"/>`,
	board.King: `<path d="M21 3 h3 v4 h4 v3 h-4 v5 h-3 v-5 h-4 v-3 h4 Z"/>` +
		`<path d="M12 35 C7 27 11 18 22.5 20 C34 18 38 27 33 35 Z"/>` +
		`<rect x="11" y="35" width="23" height="5" rx="1.5"/>`,
}

// pieceSVG builds the icon for p, filled by side.
func pieceSVG(p board.Piece) ([]byte, error) {
	shape, ok := pieceShapes[p.Kind]
	if !ok {
		return nil, fmt.Errorf("no shape for %s", p)
	}
	fill, stroke := "#f8f8f8", "#1a1a1a"
	if p.Side == board.Black {
		fill, stroke = "#2b2b2b", "#0a0a0a"
	}
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">`)
	fmt.Fprintf(&b, `<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">`, fill, stroke)
	b.WriteString(shape)
	b.WriteString(`</g></svg>`)
	return []byte(b.String()), nil
}

type pieceCacheKey struct {
	piece board.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece board.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	data, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
