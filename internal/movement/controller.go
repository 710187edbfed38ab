package movement

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/Versifine/tilewalk/internal/world"
)

const distanceEpsilon = 1e-9

// Step reports what a single Tick did to the logical position.
type Step struct {
	Moved   bool
	From    world.Cell
	To      world.Cell
	Cells   []world.Cell
	Run     bool
	Arrived bool
}

// Controller splits movement into a logical tile that advances on ticks and
// an animated position that chases it every frame.
type Controller struct {
	mu             sync.Mutex
	cfg            Config
	tile           world.Cell
	anim           Point
	target         world.Cell
	running        bool
	forceWalk      bool
	state          State
	lastMultiplier float64
}

func New(spawn world.Cell, cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("movement config: %w", err)
	}
	return &Controller{
		cfg:            cfg,
		tile:           spawn,
		anim:           pointOf(spawn),
		target:         spawn,
		state:          Idle{},
		lastMultiplier: 1,
	}, nil
}

// SetPath replaces whatever is in flight with path, which excludes the
// current tile. An empty path resets the target to the current tile and drops
// cells not yet reached; corners already reached still animate out.
func (c *Controller) SetPath(path []world.Cell, forceWalk bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(path) > 0 && path[0] == c.tile {
		path = path[1:]
	}
	if len(path) == 0 {
		c.target = c.tile
		if f, ok := c.state.(*Following); ok {
			f.Queue = nil
			f.Plan = nil
			c.forceWalk = false
			c.settle(f)
		}
		return
	}

	run := c.running && !forceWalk
	queue := make([]world.Cell, len(path))
	copy(queue, path)

	f := &Following{
		Queue: queue,
		Plan:  Compress(c.tile, queue, run)[1:],
		Run:   run,
	}
	// Restart the visual from wherever it is so a retarget never teleports.
	if c.anim != pointOf(c.tile) {
		f.Buffer = []Waypoint{{Cell: c.tile, Run: run}}
	}

	c.state = f
	c.forceWalk = forceWalk
	c.target = queue[len(queue)-1]
	slog.Debug("Path set", "from", c.tile, "to", c.target, "cells", len(queue), "waypoints", len(f.Plan), "run", run)
}

// ClearPath drops everything in flight. The animation snaps to the logical
// tile on the next Update.
func (c *Controller) ClearPath() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, moving := c.state.(*Following); moving {
		slog.Debug("Path cleared", "tile", c.tile)
	}
	c.state = Idle{}
	c.target = c.tile
	c.forceWalk = false
}

// Reset teleports the controller to cell and drops any path.
func (c *Controller) Reset(cell world.Cell) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tile = cell
	c.anim = pointOf(cell)
	c.target = cell
	c.state = Idle{}
	c.forceWalk = false
	c.lastMultiplier = 1
}

// ToggleRun flips run mode and returns the new value. Paths already queued
// keep the speed they were planned with.
func (c *Controller) ToggleRun() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = !c.running
	return c.running
}

func (c *Controller) SetRunning(running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = running
}

func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Tick advances the logical tile by up to the tiles-per-tick of the path's
// run mode and releases reached corners to the animation buffer. The tick's
// end cell is released too, so the animation always has the logical tile to
// chase, but successive end cells on a straight stretch share one entry.
func (c *Controller) Tick() Step {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.state.(*Following)
	if !ok || len(f.Queue) == 0 {
		return Step{From: c.tile, To: c.tile}
	}

	n := c.tilesPerTick(f.Run)
	if n > len(f.Queue) {
		n = len(f.Queue)
	}
	consumed := make([]world.Cell, n)
	copy(consumed, f.Queue[:n])
	f.Queue = f.Queue[n:]

	from := c.tile
	last := consumed[n-1]
	released := false
	for i, cell := range consumed {
		if len(f.Plan) > 0 && f.Plan[0].Cell == cell {
			f.release(f.Plan[0], true)
			f.Plan = f.Plan[1:]
			released = i == n-1
		}
	}
	if !released {
		f.release(Waypoint{Cell: last, Run: f.Run}, false)
	}
	c.tile = last

	step := Step{Moved: true, From: from, To: last, Cells: consumed, Run: f.Run}
	if len(f.Queue) == 0 {
		f.Plan = nil
		c.target = c.tile
		c.forceWalk = false
		step.Arrived = true
	}
	return step
}

// Update advances the animation by dt.
func (c *Controller) Update(dt time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.state.(*Following)
	if !ok {
		c.anim = pointOf(c.tile)
		c.lastMultiplier = 1
		return
	}

	if f.Segment == nil {
		if len(f.Buffer) == 0 {
			c.anim = pointOf(c.tile)
			c.lastMultiplier = 1
			c.settle(f)
			return
		}
		c.beginSegment(f)
	}

	seg := f.Segment
	distance := seg.From.distance(pointOf(seg.To.Cell))
	speed := c.segmentSpeed(f, seg)
	if distance <= distanceEpsilon {
		seg.Progress = 1
	} else if dt > 0 {
		seg.Progress += speed * dt.Seconds() / distance
	}

	if seg.Progress < 1 {
		to := pointOf(seg.To.Cell)
		c.anim = Point{
			X: seg.From.X + (to.X-seg.From.X)*seg.Progress,
			Y: seg.From.Y + (to.Y-seg.From.Y)*seg.Progress,
		}
		return
	}

	c.anim = pointOf(seg.To.Cell)
	f.Segment = nil
	if len(f.Buffer) > 0 {
		c.beginSegment(f)
		return
	}
	c.settle(f)
}

func (c *Controller) beginSegment(f *Following) {
	next := f.Buffer[0]
	f.Buffer = f.Buffer[1:]
	if len(f.Buffer) == 0 {
		f.tail = false
	}
	f.Segment = &Segment{From: c.anim, To: next}
}

func (c *Controller) settle(f *Following) {
	if f.empty() {
		c.state = Idle{}
	}
}

// segmentSpeed returns tiles per second for the active segment.
func (c *Controller) segmentSpeed(f *Following, seg *Segment) float64 {
	nominal := float64(c.tilesPerTick(seg.To.Run)) / c.cfg.TickDuration.Seconds()

	settling := seg.Progress > 0 && len(f.Queue) == 0 && len(f.Plan) == 0
	mult := c.cfg.Pace.Multiplier(f.backlog(), settling)
	c.lastMultiplier = mult

	speed := nominal * mult
	dx := math.Abs(float64(seg.To.Cell.X) - seg.From.X)
	dy := math.Abs(float64(seg.To.Cell.Y) - seg.From.Y)
	if dx > distanceEpsilon && math.Abs(dx-dy) <= distanceEpsilon {
		speed *= c.cfg.Pace.DiagonalFactor
	}
	return speed
}

func (c *Controller) tilesPerTick(run bool) int {
	if run {
		return c.cfg.RunTilesPerTick
	}
	return c.cfg.WalkTilesPerTick
}

func (c *Controller) Tile() world.Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tile
}

func (c *Controller) Anim() Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anim
}

func (c *Controller) Target() world.Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *Controller) ForceWalk() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forceWalk
}

// WorldPosition is the animated position in pixels, centred in the tile.
func (c *Controller) WorldPosition() Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	half := c.cfg.TileSize / 2
	return Point{
		X: c.anim.X*c.cfg.TileSize + half,
		Y: c.anim.Y*c.cfg.TileSize + half,
	}
}

func (c *Controller) IsMoving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.state.(*Following)
	return ok && !f.empty()
}

func (c *Controller) HasReachedDestination() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.state.(*Following)
	return c.tile == c.target && (!ok || f.empty())
}

// Backlog is the number of waypoints reached but not yet fully animated.
func (c *Controller) Backlog() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.state.(*Following); ok {
		return f.backlog()
	}
	return 0
}

// PathRemaining is the number of cells the tick loop has yet to consume.
func (c *Controller) PathRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.state.(*Following); ok {
		return len(f.Queue)
	}
	return 0
}

// Waypoints returns the corners still ahead of the animation, nearest first.
func (c *Controller) Waypoints() []Waypoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.state.(*Following)
	if !ok {
		return nil
	}
	out := make([]Waypoint, 0, f.backlog()+len(f.Plan))
	if f.Segment != nil {
		out = append(out, f.Segment.To)
	}
	out = append(out, f.Buffer...)
	out = append(out, f.Plan...)
	return out
}

func (c *Controller) SpeedMultiplier() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMultiplier
}

func (c *Controller) Phase() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase()
}

func (c *Controller) Config() Config {
	return c.cfg
}

// Validate checks the internal invariants and returns ErrInvalidState on
// the first violation.
func (c *Controller) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch s := c.state.(type) {
	case Idle:
		if c.target != c.tile {
			return fmt.Errorf("%w: idle with target %s away from tile %s", ErrInvalidState, c.target, c.tile)
		}
		return nil
	case *Following:
		return validateFollowing(s, c.tile, c.target)
	default:
		return fmt.Errorf("%w: unknown state %T", ErrInvalidState, c.state)
	}
}
