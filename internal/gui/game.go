// Package gui renders the session in a desktop window.
package gui

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Versifine/tilewalk/internal/event"
	"github.com/Versifine/tilewalk/internal/loop"
	"github.com/Versifine/tilewalk/internal/session"
	"github.com/Versifine/tilewalk/internal/world"
)

const (
	hudHeight  = 44
	fontSize   = 13
	lineHeight = 18
)

var (
	colorBackground = color.RGBA{0x12, 0x12, 0x16, 0xff}
	colorFloor      = color.RGBA{0x3a, 0x5a, 0x40, 0xff}
	colorWall       = color.RGBA{0x55, 0x55, 0x55, 0xff}
	colorGridLine   = color.RGBA{0x2a, 0x3a, 0x2c, 0xff}
	colorTile       = color.RGBA{0x40, 0x80, 0xff, 0x60}
	colorTarget     = color.RGBA{0xff, 0x50, 0x50, 0x80}
	colorWaypoint   = color.RGBA{0xff, 0xd0, 0x40, 0xff}
	colorEntity     = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	colorText       = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
)

// Game implements ebiten.Game. ebiten calls Update and Draw on one
// goroutine, which therefore owns the session.
type Game struct {
	ctx      context.Context
	sess     *session.Session
	tileSize float64
	face     font.Face
	view     session.View
}

func New(ctx context.Context, sess *session.Session) (*Game, error) {
	if sess == nil {
		return nil, fmt.Errorf("gui session is nil")
	}
	face, err := loadFace()
	if err != nil {
		return nil, err
	}
	g := &Game{
		ctx:      ctx,
		sess:     sess,
		tileSize: sess.Controller().Config().TileSize,
		face:     face,
		view:     sess.View(),
	}
	sess.SetRenderer(func(v session.View) { g.view = v })
	return g, nil
}

func loadFace() (font.Face, error) {
	tt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// Run opens the window and blocks until it is closed or ctx ends.
func (g *Game) Run() error {
	w, h := g.screenSize()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("tilewalk")

	g.sess.Scheduler().Start()
	defer g.sess.Scheduler().Stop()

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

func (g *Game) Update() error {
	if g.ctx != nil && g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		px, py := ebiten.CursorPosition()
		if cell, ok := g.cellAt(px, py); ok {
			forceWalk := ebiten.IsKeyPressed(ebiten.KeyControl)
			g.sess.MoveTo(cell.X, cell.Y, forceWalk, event.SourceClick)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.sess.Stop(event.SourceKeyboard)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sess.ToggleRun()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.sess.TogglePause()
		g.view = g.sess.View()
	}

	g.sess.Scheduler().Step()
	return nil
}

func (g *Game) cellAt(px, py int) (world.Cell, bool) {
	if py < hudHeight || g.tileSize <= 0 {
		return world.Cell{}, false
	}
	x := int(float64(px) / g.tileSize)
	y := int(float64(py-hudHeight) / g.tileSize)
	if !g.sess.Grid().IsInBounds(x, y) {
		return world.Cell{}, false
	}
	return world.Cell{X: x, Y: y}, true
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	v := g.view
	ts := float32(g.tileSize)
	grid := g.sess.Grid()

	for y := 0; y < v.Height; y++ {
		for x := 0; x < v.Width; x++ {
			px, py := float32(x)*ts, float32(y)*ts+hudHeight
			fill := colorFloor
			if !grid.IsWalkable(x, y) {
				fill = colorWall
			}
			vector.DrawFilledRect(screen, px, py, ts, ts, fill, false)
			vector.StrokeRect(screen, px, py, ts, ts, 1, colorGridLine, false)
		}
	}

	g.highlight(screen, v.Tile, colorTile)
	if v.Moving {
		g.highlight(screen, v.Target, colorTarget)
	}

	// Polyline from the entity through the remaining corners.
	prevX, prevY := float32(v.Pixel.X), float32(v.Pixel.Y)+hudHeight
	for _, wp := range v.Waypoints {
		cx, cy := g.centre(wp)
		vector.StrokeLine(screen, prevX, prevY, cx, cy, 2, colorWaypoint, true)
		vector.DrawFilledCircle(screen, cx, cy, ts/8, colorWaypoint, true)
		prevX, prevY = cx, cy
	}

	vector.DrawFilledCircle(screen, float32(v.Pixel.X), float32(v.Pixel.Y)+hudHeight, ts/3, colorEntity, true)

	text.Draw(screen, hudStatus(v), g.face, 8, lineHeight-2, colorText)
	text.Draw(screen, "click: move  ctrl+click: walk  R: run  S/Space: stop  P: pause  Esc: quit", g.face, 8, 2*lineHeight, colorText)
}

func (g *Game) highlight(screen *ebiten.Image, c world.Cell, clr color.Color) {
	ts := float32(g.tileSize)
	vector.DrawFilledRect(screen, float32(c.X)*ts, float32(c.Y)*ts+hudHeight, ts, ts, clr, false)
}

func (g *Game) centre(c world.Cell) (float32, float32) {
	ts := float32(g.tileSize)
	return float32(c.X)*ts + ts/2, float32(c.Y)*ts + ts/2 + hudHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenSize()
}

func (g *Game) screenSize() (int, int) {
	grid := g.sess.Grid()
	return int(float64(grid.Width()) * g.tileSize), int(float64(grid.Height())*g.tileSize) + hudHeight
}

func hudStatus(v session.View) string {
	status := fmt.Sprintf("FPS %.0f | %s | tick %.0f%% | tile %s -> %s | x%.1f",
		v.FPS, v.Mode(), v.TickProgress*100, v.Tile, v.Target, v.Multiplier)
	if v.State == loop.Paused {
		status += " | PAUSED"
	}
	return status
}
