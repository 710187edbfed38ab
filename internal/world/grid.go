package world

import (
	"fmt"
	"sync"
)

// Cell is an integer tile coordinate.
type Cell struct {
	X int
	Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns c offset by (dx, dy).
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Grid stores per-tile walkability for a rectangular world.
type Grid struct {
	mu       sync.RWMutex
	width    int
	height   int
	walkable []bool
	spawn    Cell
}

// NewGrid returns a width x height grid with every tile walkable.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	walkable := make([]bool, width*height)
	for i := range walkable {
		walkable[i] = true
	}
	return &Grid{
		width:    width,
		height:   height,
		walkable: walkable,
		spawn:    Cell{X: width / 2, Y: height / 2},
	}, nil
}

func (g *Grid) Width() int {
	if g == nil {
		return 0
	}
	return g.width
}

func (g *Grid) Height() int {
	if g == nil {
		return 0
	}
	return g.height
}

// Spawn is the cell new entities are placed on.
func (g *Grid) Spawn() Cell {
	if g == nil {
		return Cell{}
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.spawn
}

// SetSpawn moves the spawn cell and forces it walkable.
func (g *Grid) SetSpawn(c Cell) bool {
	if !g.IsInBounds(c.X, c.Y) {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.spawn = c
	g.walkable[g.index(c.X, c.Y)] = true
	return true
}

func (g *Grid) IsInBounds(x, y int) bool {
	return g != nil && x >= 0 && y >= 0 && x < g.width && y < g.height
}

// IsWalkable reports false for out-of-bounds tiles.
func (g *Grid) IsWalkable(x, y int) bool {
	if !g.IsInBounds(x, y) {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.walkable[g.index(x, y)]
}

func (g *Grid) SetWalkable(x, y int, walkable bool) bool {
	if !g.IsInBounds(x, y) {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.walkable[g.index(x, y)] = walkable
	return true
}

// WalkableCount returns the number of walkable tiles.
func (g *Grid) WalkableCount() int {
	if g == nil {
		return 0
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, w := range g.walkable {
		if w {
			n++
		}
	}
	return n
}

func (g *Grid) index(x, y int) int {
	return y*g.width + x
}
