package session

import (
	"github.com/Versifine/tilewalk/internal/loop"
	"github.com/Versifine/tilewalk/internal/movement"
	"github.com/Versifine/tilewalk/internal/world"
)

// View is a render snapshot. It owns its slices.
type View struct {
	Width  int
	Height int

	Tile      world.Cell
	Target    world.Cell
	Anim      movement.Point
	Pixel     movement.Point
	Waypoints []world.Cell

	Moving     bool
	Arrived    bool
	Running    bool
	Backlog    int
	Remaining  int
	Multiplier float64

	FPS          float64
	TickProgress float64
	Ticks        uint64
	State        loop.State
}

func (v View) Mode() string {
	if v.Running {
		return "run"
	}
	return "walk"
}

func (s *Session) View() View {
	wps := s.ctrl.Waypoints()
	cells := make([]world.Cell, len(wps))
	for i, wp := range wps {
		cells[i] = wp.Cell
	}
	return View{
		Width:        s.grid.Width(),
		Height:       s.grid.Height(),
		Tile:         s.ctrl.Tile(),
		Target:       s.ctrl.Target(),
		Anim:         s.ctrl.Anim(),
		Pixel:        s.ctrl.WorldPosition(),
		Waypoints:    cells,
		Moving:       s.ctrl.IsMoving(),
		Arrived:      s.ctrl.HasReachedDestination(),
		Running:      s.ctrl.Running(),
		Backlog:      s.ctrl.Backlog(),
		Remaining:    s.ctrl.PathRemaining(),
		Multiplier:   s.ctrl.SpeedMultiplier(),
		FPS:          s.sched.FPS(),
		TickProgress: s.tickProgress,
		Ticks:        s.sched.Ticks(),
		State:        s.sched.State(),
	}
}
