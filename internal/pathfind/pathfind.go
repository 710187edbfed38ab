package pathfind

import (
	"container/heap"
	"math"

	"github.com/Versifine/tilewalk/internal/world"
)

// World is the walkability oracle the finder searches over.
type World interface {
	IsInBounds(x, y int) bool
	IsWalkable(x, y int) bool
}

const DefaultLineProbeLimit = 5

type step struct {
	dx, dy int
	cost   float64
}

// Orthogonal moves first so equal-cost ties prefer straight steps.
var steps = [...]step{
	{dx: 0, dy: -1, cost: 1},
	{dx: 1, dy: 0, cost: 1},
	{dx: 0, dy: 1, cost: 1},
	{dx: -1, dy: 0, cost: 1},
	{dx: 1, dy: -1, cost: math.Sqrt2},
	{dx: 1, dy: 1, cost: math.Sqrt2},
	{dx: -1, dy: 1, cost: math.Sqrt2},
	{dx: -1, dy: -1, cost: math.Sqrt2},
}

type Finder struct {
	world          World
	LineProbeLimit int
}

func NewFinder(w World) *Finder {
	return &Finder{world: w, LineProbeLimit: DefaultLineProbeLimit}
}

// FindPath returns the cheapest 8-directional path from start to goal,
// excluding start and including goal. An empty result means the goal is
// invalid, unreachable, or equal to start.
func (f *Finder) FindPath(startX, startY, goalX, goalY int) []world.Cell {
	if f == nil || f.world == nil {
		return nil
	}
	if !f.world.IsInBounds(startX, startY) || !f.world.IsInBounds(goalX, goalY) {
		return nil
	}
	if !f.world.IsWalkable(goalX, goalY) {
		return nil
	}

	start := world.Cell{X: startX, Y: startY}
	goal := world.Cell{X: goalX, Y: goalY}
	if start == goal {
		return nil
	}

	open := &nodeQueue{}
	heap.Init(open)
	var seq uint64
	heap.Push(open, node{Cell: start, Cost: 0, seq: seq})

	cameFrom := make(map[world.Cell]world.Cell)
	dist := map[world.Cell]float64{start: 0}
	closed := make(map[world.Cell]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(node)
		if _, seen := closed[current.Cell]; seen {
			continue
		}
		closed[current.Cell] = struct{}{}

		if current.Cell == goal {
			return reconstructPath(cameFrom, start, goal)
		}

		for _, s := range steps {
			next := current.Cell.Add(s.dx, s.dy)
			if !f.canStep(current.Cell, s) {
				continue
			}
			if _, seen := closed[next]; seen {
				continue
			}

			tentative := dist[current.Cell] + s.cost
			if prev, known := dist[next]; known && tentative >= prev {
				continue
			}

			cameFrom[next] = current.Cell
			dist[next] = tentative
			seq++
			heap.Push(open, node{Cell: next, Cost: tentative, seq: seq})
		}
	}

	return nil
}

// canStep rejects blocked targets and diagonals that would cut a corner.
func (f *Finder) canStep(from world.Cell, s step) bool {
	if !f.walkable(from.X+s.dx, from.Y+s.dy) {
		return false
	}
	if s.dx != 0 && s.dy != 0 {
		return f.walkable(from.X+s.dx, from.Y) && f.walkable(from.X, from.Y+s.dy)
	}
	return true
}

func (f *Finder) walkable(x, y int) bool {
	return f.world.IsInBounds(x, y) && f.world.IsWalkable(x, y)
}

// FindNearestWalkable picks a reachable stand-in for an unwalkable click target:
// the orthogonal neighbour closest to from, else the first walkable tile on the
// line from target back toward from.
func (f *Finder) FindNearestWalkable(targetX, targetY, fromX, fromY int) (world.Cell, bool) {
	if f == nil || f.world == nil {
		return world.Cell{}, false
	}

	best := world.Cell{}
	bestDist := math.MaxFloat64
	found := false
	for _, s := range steps[:4] {
		candidate := world.Cell{X: targetX + s.dx, Y: targetY + s.dy}
		if !f.walkable(candidate.X, candidate.Y) {
			continue
		}
		d := math.Hypot(float64(candidate.X-fromX), float64(candidate.Y-fromY))
		if d < bestDist {
			best = candidate
			bestDist = d
			found = true
		}
	}
	if found {
		return best, true
	}

	limit := f.LineProbeLimit
	if limit <= 0 {
		limit = DefaultLineProbeLimit
	}
	for _, c := range f.TilesOnLine(fromX, fromY, targetX, targetY, limit) {
		if f.walkable(c.X, c.Y) {
			return c, true
		}
	}
	return world.Cell{}, false
}

// TilesOnLine walks a Bresenham line from (x1,y1) back toward (x0,y0),
// returning at most maxTiles in-bounds cells. (x0,y0) itself is never included.
func (f *Finder) TilesOnLine(x0, y0, x1, y1, maxTiles int) []world.Cell {
	if f == nil || f.world == nil || maxTiles <= 0 {
		return nil
	}

	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 >= x1 {
		sx = -1
	}
	if y0 >= y1 {
		sy = -1
	}
	err := dx - dy
	x, y := x1, y1

	tiles := make([]world.Cell, 0, maxTiles)
	for (x != x0 || y != y0) && len(tiles) < maxTiles {
		if f.world.IsInBounds(x, y) {
			tiles = append(tiles, world.Cell{X: x, Y: y})
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x -= sx
		}
		if e2 < dx {
			err += dx
			y -= sy
		}
	}
	return tiles
}

// PathCost sums edge costs along path starting from start: 1 per orthogonal
// step, sqrt(2) per diagonal. Non-adjacent hops return +Inf.
func PathCost(start world.Cell, path []world.Cell) float64 {
	total := 0.0
	prev := start
	for _, c := range path {
		dx := abs(c.X - prev.X)
		dy := abs(c.Y - prev.Y)
		switch {
		case dx+dy == 1:
			total++
		case dx == 1 && dy == 1:
			total += math.Sqrt2
		default:
			return math.Inf(1)
		}
		prev = c
	}
	return total
}

func reconstructPath(cameFrom map[world.Cell]world.Cell, start, goal world.Cell) []world.Cell {
	path := []world.Cell{goal}
	for cur := goal; cur != start; {
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		if prev != start {
			path = append(path, prev)
		}
		cur = prev
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type node struct {
	Cell world.Cell
	Cost float64
	seq  uint64
}

type nodeQueue []node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].Cost == q[j].Cost {
		return q[i].seq < q[j].seq
	}
	return q[i].Cost < q[j].Cost
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) {
	*q = append(*q, x.(node))
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
