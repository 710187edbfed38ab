package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/Versifine/tilewalk/internal/event"
	"github.com/Versifine/tilewalk/internal/loop"
	"github.com/Versifine/tilewalk/internal/pathfind"
	"github.com/Versifine/tilewalk/internal/session"
	"github.com/Versifine/tilewalk/internal/world"
)

const defaultFrameInterval = 16 * time.Millisecond

const (
	keyEnter     = 13
	keyNewline   = 10
	keyEscape    = 27
	keyBackspace = 8
	keyDelete    = 127
	keyCtrlC     = 3
)

// Console is a raw-mode terminal frontend. Input bytes are read on a
// separate goroutine and handed to the goroutine that owns the session.
type Console struct {
	sess          *session.Session
	in            io.Reader
	out           io.Writer
	frameInterval time.Duration

	commandMode bool
	commandBuf  []rune
	escState    int
	statusWidth int
	quit        bool
}

func NewConsole(sess *session.Session) *Console {
	return newConsole(sess, os.Stdin, os.Stdout)
}

func newConsole(sess *session.Session, in io.Reader, out io.Writer) *Console {
	c := &Console{
		sess:          sess,
		in:            in,
		out:           out,
		frameInterval: defaultFrameInterval,
	}
	if sess != nil {
		sess.SetRenderer(c.renderStatusLine)
	}
	return c
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.sess == nil {
		return fmt.Errorf("console session is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	fmt.Fprint(c.out, "[debug] console started (arrows step, R run, S/Space stop, P pause, Q quit, : command)\r\n")
	c.sess.Scheduler().Start()
	defer c.sess.Scheduler().Stop()

	input := make(chan byte, 64)
	readErr := make(chan error, 1)
	go c.readLoop(input, readErr)

	ticker := time.NewTicker(c.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		case b := <-input:
			c.handleByte(b)
			if c.quit {
				return nil
			}
		case <-ticker.C:
			c.sess.Scheduler().Step()
		}
	}
}

func (c *Console) readLoop(input chan<- byte, readErr chan<- error) {
	buf := make([]byte, 1)
	for {
		n, err := c.in.Read(buf)
		if err != nil {
			readErr <- err
			return
		}
		if n == 1 {
			input <- buf[0]
		}
	}
}

// handleByte feeds one input byte through the key decoder. ESC [ x arrow
// sequences arrive as three bytes.
func (c *Console) handleByte(b byte) {
	if c.commandMode {
		c.handleCommandByte(b)
		return
	}

	switch c.escState {
	case 1:
		if b == '[' {
			c.escState = 2
			return
		}
		c.escState = 0
	case 2:
		c.escState = 0
		c.handleArrow(b)
		return
	}

	switch b {
	case keyEscape:
		c.escState = 1
		return
	case ':':
		c.enterCommandMode()
		return
	case 'r', 'R':
		running := c.sess.ToggleRun()
		slog.Debug("debug run toggled", "enabled", running)
		fmt.Fprintf(c.out, "\r\n[debug] mode: %s\r\n", modeLabel(running))
	case 's', 'S', ' ':
		c.sess.Stop(event.SourceKeyboard)
	case 'p', 'P':
		state := c.sess.TogglePause()
		fmt.Fprintf(c.out, "\r\n[debug] scheduler %s\r\n", state)
	case 'q', 'Q', keyCtrlC:
		c.quit = true
		return
	}
	c.renderStatusLine(c.sess.View())
}

func (c *Console) handleArrow(b byte) {
	var dx, dy int
	switch b {
	case 'A':
		dy = -1
	case 'B':
		dy = 1
	case 'C':
		dx = 1
	case 'D':
		dx = -1
	default:
		return
	}
	// Step relative to the destination so repeated presses extend the path.
	base := c.sess.Controller().Target()
	c.sess.MoveTo(base.X+dx, base.Y+dy, false, event.SourceKeyboard)
	c.renderStatusLine(c.sess.View())
}

func (c *Console) enterCommandMode() {
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case keyEnter, keyNewline:
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine(c.sess.View())
	case keyEscape:
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine(c.sess.View())
	case keyBackspace, keyDelete:
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
	default:
		if b < 32 || b > 126 {
			return
		}
		c.commandBuf = append(c.commandBuf, rune(b))
		fmt.Fprintf(c.out, "\r:%s", string(c.commandBuf))
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "go", "walk":
		x, y, ok := c.parseCell(parts)
		if !ok {
			return
		}
		forceWalk := parts[0] == "walk"
		if c.sess.MoveTo(x, y, forceWalk, event.SourceConsole) {
			fmt.Fprintf(c.out, "[debug] heading to %s\r\n", c.sess.Controller().Target())
		} else {
			fmt.Fprintf(c.out, "[debug] cannot move to (%d,%d)\r\n", x, y)
		}
	case "tp":
		x, y, ok := c.parseCell(parts)
		if !ok {
			return
		}
		if err := c.sess.Teleport(x, y); err != nil {
			fmt.Fprintf(c.out, "[debug] %v\r\n", err)
			return
		}
		fmt.Fprintf(c.out, "[debug] teleported to (%d,%d)\r\n", x, y)
	case "state":
		v := c.sess.View()
		fmt.Fprintf(c.out, "[debug] phase=%s tile=%s target=%s anim=(%.2f,%.2f) backlog=%d remaining=%d x%.2f\r\n",
			c.sess.Controller().Phase(), v.Tile, v.Target, v.Anim.X, v.Anim.Y, v.Backlog, v.Remaining, v.Multiplier)
		if err := c.sess.Controller().Validate(); err != nil {
			fmt.Fprintf(c.out, "[debug] invalid: %v\r\n", err)
		}
	case "path":
		v := c.sess.View()
		if len(v.Waypoints) == 0 {
			fmt.Fprint(c.out, "[debug] no path\r\n")
			return
		}
		labels := make([]string, len(v.Waypoints))
		for i, wp := range v.Waypoints {
			labels[i] = wp.String()
		}
		fmt.Fprintf(c.out, "[debug] waypoints: %s\r\n", strings.Join(labels, " -> "))
	case "cost":
		x, y, ok := c.parseCell(parts)
		if !ok {
			return
		}
		from := c.sess.Controller().Tile()
		path := c.sess.Finder().FindPath(from.X, from.Y, x, y)
		if len(path) == 0 {
			fmt.Fprintf(c.out, "[debug] no path from %s to (%d,%d)\r\n", from, x, y)
			return
		}
		fmt.Fprintf(c.out, "[debug] %d tiles, cost %.3f\r\n", len(path), pathfind.PathCost(from, path))
	case "map":
		c.printMap()
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) parseCell(parts []string) (int, int, bool) {
	if len(parts) != 3 {
		fmt.Fprintf(c.out, "[debug] usage: :%s <x> <y>\r\n", parts[0])
		return 0, 0, false
	}
	x, err1 := strconv.Atoi(parts[1])
	y, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		fmt.Fprintf(c.out, "[debug] invalid %s args\r\n", parts[0])
		return 0, 0, false
	}
	return x, y, true
}

func (c *Console) printMap() {
	v := c.sess.View()
	onPath := make(map[world.Cell]bool, len(v.Waypoints))
	for _, wp := range v.Waypoints {
		onPath[wp] = true
	}
	for y, row := range c.sess.Grid().Layout() {
		line := []rune(row)
		for x := range line {
			cell := world.Cell{X: x, Y: y}
			switch {
			case cell == v.Tile:
				line[x] = '@'
			case cell == v.Target:
				line[x] = 'X'
			case onPath[cell]:
				line[x] = '+'
			case line[x] == world.LayoutSpawn:
				line[x] = world.LayoutFloor
			}
		}
		fmt.Fprintf(c.out, "%s\r\n", string(line))
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  Arrows: extend the path one tile\r\n")
	fmt.Fprint(c.out, "  R: toggle run\r\n")
	fmt.Fprint(c.out, "  S/Space: stop\r\n")
	fmt.Fprint(c.out, "  P: pause/resume\r\n")
	fmt.Fprint(c.out, "  Q: quit\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :go <x> <y>\r\n")
	fmt.Fprint(c.out, "  :walk <x> <y>\r\n")
	fmt.Fprint(c.out, "  :tp <x> <y>\r\n")
	fmt.Fprint(c.out, "  :cost <x> <y>\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :path\r\n")
	fmt.Fprint(c.out, "  :map\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine(v session.View) {
	if c.commandMode {
		return
	}

	line := fmt.Sprintf(
		"[%s %s | tile:%s -> %s | anim:%.2f,%.2f x%.1f | tick:%3.0f%% fps:%.0f]",
		stateLabel(v.State),
		v.Mode(),
		v.Tile,
		v.Target,
		v.Anim.X,
		v.Anim.Y,
		v.Multiplier,
		v.TickProgress*100,
		v.FPS,
	)

	padding := ""
	if c.statusWidth > len(line) {
		padding = strings.Repeat(" ", c.statusWidth-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
}

func stateLabel(s loop.State) string {
	if s == loop.Paused {
		return "PAUSED"
	}
	return "LIVE"
}

func modeLabel(running bool) string {
	if running {
		return "run"
	}
	return "walk"
}
