package world

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

const (
	LayoutWall  = '#'
	LayoutFloor = '.'
	LayoutSpawn = '@'
)

var ErrEmptyLayout = errors.New("layout has no rows")

// ParseLayout builds a grid from ASCII rows: '#' wall, '.' floor, '@' spawn.
// All rows must have the same width.
func ParseLayout(rows []string) (*Grid, error) {
	trimmed := make([]string, 0, len(rows))
	for _, row := range rows {
		row = strings.TrimRight(row, " \t\r")
		if row == "" {
			continue
		}
		trimmed = append(trimmed, row)
	}
	if len(trimmed) == 0 {
		return nil, ErrEmptyLayout
	}

	width := len(trimmed[0])
	g, err := NewGrid(width, len(trimmed))
	if err != nil {
		return nil, err
	}

	spawnSet := false
	for y, row := range trimmed {
		if len(row) != width {
			return nil, fmt.Errorf("layout row %d has width %d, want %d", y, len(row), width)
		}
		for x, ch := range []byte(row) {
			switch ch {
			case LayoutWall:
				g.walkable[g.index(x, y)] = false
			case LayoutFloor:
			case LayoutSpawn:
				if spawnSet {
					return nil, fmt.Errorf("layout has more than one spawn (second at %d,%d)", x, y)
				}
				g.spawn = Cell{X: x, Y: y}
				spawnSet = true
			default:
				return nil, fmt.Errorf("layout row %d: unknown tile %q at column %d", y, ch, x)
			}
		}
	}
	if !spawnSet && !g.walkable[g.index(g.spawn.X, g.spawn.Y)] {
		found := false
		for i, w := range g.walkable {
			if w {
				g.spawn = Cell{X: i % width, Y: i / width}
				found = true
				break
			}
		}
		if !found {
			return nil, errors.New("layout has no walkable tile")
		}
	}
	return g, nil
}

// Generate scatters walls with the given probability, keeping spawn walkable.
func Generate(width, height int, wallChance float64, seed int64, spawn Cell) (*Grid, error) {
	g, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	if wallChance < 0 || wallChance >= 1 {
		return nil, fmt.Errorf("wall chance %.2f out of range [0,1)", wallChance)
	}
	if !g.IsInBounds(spawn.X, spawn.Y) {
		return nil, fmt.Errorf("spawn %s outside %dx%d grid", spawn, width, height)
	}

	rng := rand.New(rand.NewSource(seed))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if rng.Float64() < wallChance {
				g.walkable[g.index(x, y)] = false
			}
		}
	}
	g.SetSpawn(spawn)
	return g, nil
}

// Layout renders the grid back into ASCII rows.
func (g *Grid) Layout() []string {
	if g == nil {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	rows := make([]string, g.height)
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		sb.Reset()
		for x := 0; x < g.width; x++ {
			switch {
			case g.spawn == (Cell{X: x, Y: y}):
				sb.WriteByte(LayoutSpawn)
			case g.walkable[g.index(x, y)]:
				sb.WriteByte(LayoutFloor)
			default:
				sb.WriteByte(LayoutWall)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}
