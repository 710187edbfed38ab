package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Versifine/tilewalk/internal/event"
	"github.com/Versifine/tilewalk/internal/loop"
	"github.com/Versifine/tilewalk/internal/movement"
	"github.com/Versifine/tilewalk/internal/pathfind"
	"github.com/Versifine/tilewalk/internal/world"
)

const (
	ReasonOutOfBounds = "out of bounds"
	ReasonNoWalkable  = "no walkable tile near target"
	ReasonNoPath      = "no path"
	ReasonAlreadyHere = "already there"
)

type RenderFunc func(View)

// Session wires input, pathfinding, movement and the scheduler together.
// All methods must be called from the goroutine that drives the scheduler.
type Session struct {
	grid   *world.Grid
	finder *pathfind.Finder
	ctrl   *movement.Controller
	sched  *loop.Scheduler
	bus    *event.Bus

	render       RenderFunc
	tickProgress float64
}

func New(grid *world.Grid, finder *pathfind.Finder, ctrl *movement.Controller, sched *loop.Scheduler, bus *event.Bus) (*Session, error) {
	switch {
	case grid == nil:
		return nil, errors.New("session: grid is nil")
	case finder == nil:
		return nil, errors.New("session: finder is nil")
	case ctrl == nil:
		return nil, errors.New("session: controller is nil")
	case sched == nil:
		return nil, errors.New("session: scheduler is nil")
	}
	if bus == nil {
		bus = event.NewBus()
	}
	s := &Session{
		grid:   grid,
		finder: finder,
		ctrl:   ctrl,
		sched:  sched,
		bus:    bus,
	}
	sched.SetCallbacks(s.onTick, s.onUpdate, s.onRender)
	return s, nil
}

func (s *Session) SetRenderer(fn RenderFunc) {
	s.render = fn
}

// MoveTo plans a path from the current tile to (x,y). An unwalkable target
// falls back to the nearest walkable tile. It reports whether a path was set;
// rejections publish path.rejected and leave movement untouched.
func (s *Session) MoveTo(x, y int, forceWalk bool, src event.SourceType) bool {
	from := s.ctrl.Tile()
	requested := world.Cell{X: x, Y: y}

	if !s.grid.IsInBounds(x, y) {
		s.reject(src, from, requested, ReasonOutOfBounds)
		return false
	}
	goal := requested
	if !s.grid.IsWalkable(x, y) {
		near, ok := s.finder.FindNearestWalkable(x, y, from.X, from.Y)
		if !ok {
			s.reject(src, from, requested, ReasonNoWalkable)
			return false
		}
		goal = near
	}
	if goal == from {
		s.reject(src, from, requested, ReasonAlreadyHere)
		return false
	}

	path := s.finder.FindPath(from.X, from.Y, goal.X, goal.Y)
	if len(path) == 0 {
		s.reject(src, from, requested, ReasonNoPath)
		return false
	}

	s.ctrl.SetPath(path, forceWalk)
	s.bus.Publish(event.EventPathSet, &event.PathSetEvent{
		Source:    src,
		From:      from,
		Requested: requested,
		Goal:      goal,
		Cells:     len(path),
		Waypoints: len(s.ctrl.Waypoints()),
		Run:       s.ctrl.Running() && !forceWalk,
	})
	return true
}

func (s *Session) reject(src event.SourceType, from, requested world.Cell, reason string) {
	s.bus.Publish(event.EventPathRejected, &event.PathRejectedEvent{
		Source:    src,
		From:      from,
		Requested: requested,
		Reason:    reason,
	})
}

func (s *Session) Stop(src event.SourceType) {
	moving := s.ctrl.IsMoving()
	s.ctrl.ClearPath()
	if moving {
		s.bus.Publish(event.EventMovementStopped, &event.StoppedEvent{Source: src, At: s.ctrl.Tile()})
	}
}

func (s *Session) ToggleRun() bool {
	running := s.ctrl.ToggleRun()
	s.bus.Publish(event.EventMovementMode, &event.ModeEvent{Running: running})
	return running
}

// TogglePause flips between Running and Paused and returns the new state.
func (s *Session) TogglePause() loop.State {
	switch s.sched.State() {
	case loop.Running:
		s.sched.Pause()
	case loop.Paused:
		s.sched.Resume()
	}
	return s.sched.State()
}

// Teleport moves the entity instantly, dropping any path.
func (s *Session) Teleport(x, y int) error {
	if !s.grid.IsInBounds(x, y) || !s.grid.IsWalkable(x, y) {
		return fmt.Errorf("teleport target (%d,%d) is not walkable", x, y)
	}
	s.ctrl.Reset(world.Cell{X: x, Y: y})
	return nil
}

func (s *Session) onTick(tick uint64) {
	step := s.ctrl.Tick()
	if !step.Moved {
		return
	}
	s.bus.Publish(event.EventMovementStep, &event.StepEvent{
		Tick:  tick,
		From:  step.From,
		To:    step.To,
		Cells: len(step.Cells),
		Run:   step.Run,
	})
	if step.Arrived {
		s.bus.Publish(event.EventMovementArrived, &event.ArrivedEvent{Tick: tick, At: step.To})
	}
}

func (s *Session) onUpdate(dt time.Duration, tickProgress float64) {
	s.tickProgress = tickProgress
	s.ctrl.Update(dt)
	if err := s.ctrl.Validate(); err != nil {
		slog.Error("Movement state invalid", "error", err)
		s.ctrl.Reset(s.ctrl.Tile())
	}
}

func (s *Session) onRender() {
	if s.render != nil {
		s.render(s.View())
	}
}

func (s *Session) Grid() *world.Grid                { return s.grid }
func (s *Session) Finder() *pathfind.Finder         { return s.finder }
func (s *Session) Controller() *movement.Controller { return s.ctrl }
func (s *Session) Scheduler() *loop.Scheduler       { return s.sched }
func (s *Session) Bus() *event.Bus                  { return s.bus }
