package chess

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"

	"github.com/park285/playpad-server/internal/board"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type RenderOptions struct {
	LastMove     *board.MoveRecord
	Selected     *board.Square
	Destinations []board.Square
	Header       string
	Material     MaterialScore
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, b board.Board, opts RenderOptions) ([]byte, error)
}

const (
	squareSize  = 64
	sideMargin  = 28
	hudHeight   = 36
	gapToBoard  = 10
	boardPixels = squareSize * board.Size
)

var (
	lightSquare             = color.RGBA{233, 207, 163, 255}
	darkSquare              = color.RGBA{187, 136, 96, 255}
	backgroundColor         = color.RGBA{40, 44, 60, 255}
	hudPanelColor           = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTextColor            = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	whiteMoveHighlightFill  = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveHighlightArrow = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	selectedFill            = color.NRGBA{R: 120, G: 200, B: 120, A: 150}
	destinationDot          = color.NRGBA{R: 30, G: 30, B: 30, A: 110}
	coordinateTextColor     = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

type svgBoardRenderer struct{}

// NewSVGBoardRenderer rasterises code-generated SVG pieces onto a PNG board
// with a one-line status header.
func NewSVGBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{}
}

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, b board.Board, opts RenderOptions) ([]byte, error) {
	totalWidth := boardPixels + sideMargin*2
	totalHeight := hudHeight + gapToBoard + boardPixels + sideMargin
	origin := image.Point{X: sideMargin, Y: hudHeight + gapToBoard}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawHUD(img, opts, totalWidth)
	drawSquares(img, origin)
	drawLastMove(img, opts.LastMove, origin)
	if opts.Selected != nil && opts.Selected.Valid() {
		drawSquareOverlay(img, *opts.Selected, origin, selectedFill)
	}
	if err := drawPieces(ctx, img, b, origin); err != nil {
		return nil, err
	}
	for _, sq := range opts.Destinations {
		rect := squareRect(sq, origin)
		center := image.Point{X: rect.Min.X + squareSize/2, Y: rect.Min.Y + squareSize/2}
		drawDisc(img, center, squareSize/7, destinationDot)
	}
	drawCoordinates(img, origin)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawHUD(img *image.RGBA, opts RenderOptions, width int) {
	panel := image.Rect(sideMargin, 6, width-sideMargin, hudHeight)
	imagedraw.Draw(img, panel, image.NewUniform(hudPanelColor), image.Point{}, imagedraw.Over)

	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13, Src: image.NewUniform(hudTextColor)}
	baseline := panel.Min.Y + (panel.Dy()+basicfont.Face7x13.Ascent)/2
	drawer.Dot = fixed.P(panel.Min.X+10, baseline)
	drawer.DrawString(opts.Header)

	score := formatMaterialDiff(opts.Material)
	w := drawer.MeasureString(score).Round()
	drawer.Dot = fixed.P(panel.Max.X-10-w, baseline)
	drawer.DrawString(score)
}

func formatMaterialDiff(material MaterialScore) string {
	diff := material.Diff()
	if diff == 0 {
		return "="
	}
	return fmt.Sprintf("%+d", diff)
}

func drawSquares(dst imagedraw.Image, origin image.Point) {
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			sq := board.Square{Row: row, Col: col}
			imagedraw.Draw(dst, squareRect(sq, origin), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(ctx context.Context, dst imagedraw.Image, b board.Board, origin image.Point) error {
	var firstErr error
	b.Pieces(func(sq board.Square, p board.Piece) {
		if firstErr != nil {
			return
		}
		if err := ctx.Err(); err != nil {
			firstErr = err
			return
		}
		img, err := renderPieceImage(p, squareSize)
		if err != nil {
			firstErr = err
			return
		}
		imagedraw.Draw(dst, squareRect(sq, origin), img, image.Point{}, imagedraw.Over)
	})
	return firstErr
}

// drawLastMove fills both squares for a white move and draws an arrow for a
// black one.
func drawLastMove(img *image.RGBA, last *board.MoveRecord, origin image.Point) {
	if last == nil {
		return
	}
	if last.Piece.Side == board.Black {
		drawArrow(img, last.From, last.To, origin, blackMoveHighlightArrow)
		return
	}
	drawSquareOverlay(img, last.From, origin, whiteMoveHighlightFill)
	drawSquareOverlay(img, last.To, origin, whiteMoveHighlightFill)
}

func drawSquareOverlay(img *image.RGBA, sq board.Square, origin image.Point, clr color.Color) {
	imagedraw.Draw(img, squareRect(sq, origin), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawArrow(img *image.RGBA, from, to board.Square, origin image.Point, clr color.Color) {
	if from == to {
		return
	}
	start := squareCenter(from, origin)
	end := squareCenter(to, origin)
	dx, dy := end.X-start.X, end.Y-start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	baseLength := length - squareSize*0.45
	if baseLength < squareSize*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := squareSize * 0.18
	headHalf := squareSize * 0.16

	base := pointF{X: start.X + dirX*baseLength, Y: start.Y + dirY*baseLength}
	offset := func(p pointF, w float64) pointF {
		return pointF{X: p.X + perpX*w, Y: p.Y + perpY*w}
	}

	fillTriangleF(img, offset(start, -halfWidth), offset(start, halfWidth), offset(base, halfWidth), clr)
	fillTriangleF(img, offset(start, -halfWidth), offset(base, halfWidth), offset(base, -halfWidth), clr)
	fillTriangleF(img, end, offset(base, -headHalf*2), offset(base, headHalf*2), clr)
}

func drawCoordinates(dst imagedraw.Image, origin image.Point) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Ascent

	for i := 0; i < board.Size; i++ {
		rank := string(rune('0' + board.Size - i))
		centerY := origin.Y + i*squareSize + squareSize/2
		drawCenteredText(drawer, rank, origin.X-sideMargin/2, centerY+ascent/2)

		file := string(rune('a' + i))
		centerX := origin.X + i*squareSize + squareSize/2
		drawCenteredText(drawer, file, centerX, origin.Y+boardPixels+ascent+4)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= r2 {
				blendPixel(img, center.X+x, center.Y+y, clr)
			}
		}
	}
}

// blendPixel composites clr over the pixel with source-over alpha.
func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 65535 - sa
	mix := func(s uint32, d uint8) uint8 {
		return uint8((s + uint32(d)*0x101*inv/65535) >> 8)
	}
	img.SetRGBA(x, y, color.RGBA{
		R: mix(sr, dst.R),
		G: mix(sg, dst.G),
		B: mix(sb, dst.B),
		A: mix(sa, dst.A),
	})
}

type pointF struct {
	X float64
	Y float64
}

func fillTriangleF(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(min(a.X, b.X, c.X)))
	maxX := int(math.Ceil(max(a.X, b.X, c.X)))
	minY := int(math.Floor(min(a.Y, b.Y, c.Y)))
	maxY := int(math.Ceil(max(a.Y, b.Y, c.Y)))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if pointInTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func pointInTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	return alpha >= 0 && beta >= 0 && 1-alpha-beta >= 0
}

func squareRect(sq board.Square, origin image.Point) image.Rectangle {
	x := origin.X + sq.Col*squareSize
	y := origin.Y + sq.Row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func squareCenter(sq board.Square, origin image.Point) pointF {
	r := squareRect(sq, origin)
	return pointF{X: float64(r.Min.X) + squareSize/2, Y: float64(r.Min.Y) + squareSize/2}
}

// squareColor: a1 (row 7, col 0) is dark.
func squareColor(sq board.Square) color.Color {
	if (sq.Row+sq.Col)%2 == 1 {
		return darkSquare
	}
	return lightSquare
}
