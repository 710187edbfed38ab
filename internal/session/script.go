package session

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Versifine/tilewalk/internal/event"
	"github.com/Versifine/tilewalk/internal/loop"
	"github.com/Versifine/tilewalk/internal/world"
)

type ScriptResult struct {
	Goals    int
	Reached  []world.Cell
	Rejected int
	Ticks    uint64
	Frames   int
	Elapsed  time.Duration
}

// RunScript walks to each goal in turn, feeding the scheduler fixed frames
// until the entity settles. It fails if a goal takes more than maxFrames.
func (s *Session) RunScript(goals []world.Cell, frame time.Duration, maxFrames int) (ScriptResult, error) {
	res := ScriptResult{Goals: len(goals)}
	if frame <= 0 {
		frame = s.sched.Config().FrameDuration
	}
	if s.sched.State() != loop.Running {
		s.sched.Start()
	}

	for _, goal := range goals {
		if !s.MoveTo(goal.X, goal.Y, false, event.SourceScript) {
			res.Rejected++
			continue
		}
		for frames := 0; s.ctrl.IsMoving(); frames++ {
			if frames >= maxFrames {
				res.Ticks = s.sched.Ticks()
				return res, fmt.Errorf("goal %s not reached after %d frames", goal, maxFrames)
			}
			s.sched.Advance(frame)
			res.Frames++
			res.Elapsed += frame
		}
		res.Reached = append(res.Reached, s.ctrl.Tile())
	}
	res.Ticks = s.sched.Ticks()
	return res, nil
}

// RandomGoals picks n walkable cells from g, reproducibly for a given seed.
func RandomGoals(g *world.Grid, n int, seed int64) []world.Cell {
	var walkable []world.Cell
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.IsWalkable(x, y) {
				walkable = append(walkable, world.Cell{X: x, Y: y})
			}
		}
	}
	if len(walkable) == 0 || n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	goals := make([]world.Cell, n)
	for i := range goals {
		goals[i] = walkable[rng.Intn(len(walkable))]
	}
	return goals
}
