// Package tui is a click-to-move terminal frontend. Each tile is drawn two
// columns wide so the grid keeps a roughly square aspect.
package tui

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Versifine/tilewalk/internal/event"
	"github.com/Versifine/tilewalk/internal/loop"
	"github.com/Versifine/tilewalk/internal/movement"
	"github.com/Versifine/tilewalk/internal/session"
	"github.com/Versifine/tilewalk/internal/world"
)

const (
	cellWidth     = 2
	mapTop        = 2
	frameInterval = 16 * time.Millisecond
	helpLine      = "click: move  ctrl+click: walk  r: run  s/space: stop  p: pause  q/esc: quit"
)

var (
	styleFloor    = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleWall     = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorGray)
	styleWaypoint = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleTarget   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleTile     = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleEntity   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleHUD      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHelp     = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
)

type App struct {
	sess   *session.Session
	screen tcell.Screen

	pressed bool
	quit    bool
}

// New wraps screen, which must already be initialised.
func New(sess *session.Session, screen tcell.Screen) (*App, error) {
	if sess == nil {
		return nil, fmt.Errorf("tui session is nil")
	}
	if screen == nil {
		return nil, fmt.Errorf("tui screen is nil")
	}
	a := &App{sess: sess, screen: screen}
	sess.SetRenderer(a.draw)
	return a, nil
}

// OpenScreen creates and initialises a terminal screen with mouse support.
func OpenScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	return screen, nil
}

// Run owns the session until ctx ends or the user quits. Terminal events
// are polled on a separate goroutine and handled here.
func (a *App) Run(ctx context.Context) error {
	sched := a.sess.Scheduler()
	sched.Start()
	defer sched.Stop()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(a.screen, eventChan, done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventChan:
			a.handleEvent(ev)
			if a.quit {
				return nil
			}
		case <-ticker.C:
			sched.Step()
		}
	}
}

// pollEvents forwards screen events until the screen is finalised or done
// is closed.
func pollEvents(screen tcell.Screen, out chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-done:
			return
		}
	}
}

func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventResize:
		a.screen.Sync()
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.quit = true
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'q', 'Q':
		a.quit = true
	case 's', 'S', ' ':
		a.sess.Stop(event.SourceKeyboard)
	case 'r', 'R':
		a.sess.ToggleRun()
	case 'p', 'P':
		a.sess.TogglePause()
		// Paused schedulers do not render, so show the state change now.
		a.draw(a.sess.View())
	}
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	down := ev.Buttons()&tcell.Button1 != 0
	click := down && !a.pressed
	a.pressed = down
	if !click {
		return
	}
	sx, sy := ev.Position()
	cell, ok := screenToCell(sx, sy)
	if !ok {
		return
	}
	forceWalk := ev.Modifiers()&tcell.ModCtrl != 0
	a.sess.MoveTo(cell.X, cell.Y, forceWalk, event.SourceClick)
}

func screenToCell(sx, sy int) (world.Cell, bool) {
	if sx < 0 || sy < mapTop {
		return world.Cell{}, false
	}
	return world.Cell{X: sx / cellWidth, Y: sy - mapTop}, true
}

// entityScreenPos places the animated position on the character grid.
func entityScreenPos(anim movement.Point) (int, int) {
	return int(math.Round(anim.X * cellWidth)), int(math.Round(anim.Y)) + mapTop
}

func (a *App) draw(v session.View) {
	a.screen.Clear()

	drawText(a.screen, 0, 0, styleHUD, hudLine(v))
	drawText(a.screen, 0, 1, styleHelp, helpLine)

	grid := a.sess.Grid()
	waypoints := make(map[world.Cell]bool, len(v.Waypoints))
	for _, wp := range v.Waypoints {
		waypoints[wp] = true
	}
	for y := 0; y < v.Height; y++ {
		for x := 0; x < v.Width; x++ {
			cell := world.Cell{X: x, Y: y}
			r, style := tileGlyph(cell, grid.IsWalkable(x, y), v, waypoints[cell])
			for i := 0; i < cellWidth; i++ {
				a.screen.SetContent(x*cellWidth+i, y+mapTop, r, nil, style)
			}
		}
	}

	ex, ey := entityScreenPos(v.Anim)
	a.screen.SetContent(ex, ey, '@', nil, styleEntity)
	a.screen.Show()
}

func tileGlyph(cell world.Cell, walkable bool, v session.View, waypoint bool) (rune, tcell.Style) {
	switch {
	case !walkable:
		return '#', styleWall
	case v.Moving && cell == v.Target:
		return 'X', styleTarget
	case cell == v.Tile:
		return '+', styleTile
	case waypoint:
		return '*', styleWaypoint
	default:
		return '.', styleFloor
	}
}

func hudLine(v session.View) string {
	state := ""
	if v.State == loop.Paused {
		state = " PAUSED"
	}
	return fmt.Sprintf("FPS %3.0f  %-4s  tick %3.0f%%  tile %s  target %s  backlog %d  x%.1f%s",
		v.FPS, v.Mode(), v.TickProgress*100, v.Tile, v.Target, v.Backlog, v.Multiplier, state)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
